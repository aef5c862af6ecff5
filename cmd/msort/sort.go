package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"msort/internal/bench"
	"msort/internal/msort"
)

var sortInput string

var sortCmd = &cobra.Command{
	Use:   "sort [ints...]",
	Short: "sort integers given as arguments or read from --input",
	Example: `  msort sort 38 27 43 3 9 82 10
  msort sort 5 -1 3
  msort --mode sequential sort -- -4 2 -9`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args)
		if err != nil {
			return err
		}

		sorter, closePool, err := newSorter(runCfg)
		if err != nil {
			return err
		}
		defer closePool()

		sorted, err := sorter.Sort(data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), joinInts(sorted))
		return nil
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "sort the small demo array in every mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		base, closePool, err := newSorter(runCfg)
		if err != nil {
			return err
		}
		defer closePool()

		for _, mode := range msort.Modes() {
			arr := []int{38, 27, 43, 3, 9, 82, 10}
			fmt.Printf("%-15s before: %s\n", mode, joinInts(arr))

			sorter := base
			sorter.Mode = mode
			if _, err := sorter.Sort(arr); err != nil {
				return err
			}
			fmt.Printf("%-15s after:  %s\n", mode, joinInts(arr))
		}
		return nil
	},
}

func init() {
	sortCmd.Flags().StringVar(&sortInput, "input", "", "file with one integer per line")
	// 첫 인자 이후의 "-1" 같은 음수를 플래그로 읽지 않는다
	sortCmd.Flags().SetInterspersed(false)
}

func readInput(args []string) ([]int, error) {
	if sortInput != "" {
		return bench.ReadDataFromFile(sortInput)
	}

	data := make([]int, 0, len(args))
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' }) {
			n, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, errors.Wrapf(msort.ErrInvalidArgument, "not an integer: %q", field)
			}
			data = append(data, n)
		}
	}
	return data, nil
}

func joinInts(data []int) string {
	var b strings.Builder
	for i, n := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
