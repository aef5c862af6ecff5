package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"msort/internal/ownership"
)

var lifecycleCmd = &cobra.Command{
	Use:   "lifecycle",
	Short: "show object lifecycles: manual release, shared and exclusive handles",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if err := manualLifecycle(out, ownership.ObjectCount, ownership.DataSize); err != nil {
			return err
		}

		printEvent := ownership.WithObserver(func(e ownership.Event) {
			fmt.Fprintf(out, "  %s %s refs=%d\n", e.Name, e.Kind, e.Refs)
		})
		fmt.Fprintln(out, "\nShared handle:")
		ownership.SharedScope(printEvent)
		fmt.Fprintln(out, "\nExclusive handle:")
		ownership.ExclusiveScope(printEvent)
		return nil
	},
}

// manualLifecycle 객체를 만들고 1, 3 번을 먼저 해제한 뒤 나머지를 해제하며 매 단계를 출력한다
func manualLifecycle(out io.Writer, count, size int) error {
	fmt.Fprintln(out, "Creating objects...")
	reg := ownership.NewRegistry(count, size, ownership.WithObserver(func(e ownership.Event) {
		if e.Kind == ownership.Acquired {
			fmt.Fprintf(out, "Created %s\n", e.Name)
		}
	}))
	printUsage(out, "Objects memory usage", reg)
	fmt.Fprintf(out, "\nCurrent objects: %s\n", liveNames(reg))

	fmt.Fprintln(out, "\nPerforming manual cleanup...")
	for _, i := range ownership.FirstReleased {
		if i >= count {
			continue
		}
		if err := reg.Release(i); err != nil {
			return err
		}
	}
	printUsage(out, "Remaining objects memory usage", reg)
	fmt.Fprintf(out, "\nRemaining objects: %s\n", liveNames(reg))

	reg.ReleaseAll()
	fmt.Fprintln(out, "\nAfter releasing the rest:")
	fmt.Fprintf(out, "Remaining objects: %s\n", liveNames(reg))
	return nil
}

func liveNames(reg *ownership.Registry) string {
	live := reg.Live()
	if len(live) == 0 {
		return "None"
	}
	return strings.Join(live, " ")
}

func printUsage(out io.Writer, title string, reg *ownership.Registry) {
	fmt.Fprintf(out, "\n%s\n", title)
	for _, u := range reg.Usage() {
		fmt.Fprintf(out, "%s: %s\n", u.Name, humanize.IBytes(u.Bytes))
	}
}
