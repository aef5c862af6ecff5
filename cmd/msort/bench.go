package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"msort/internal/bench"
	"msort/internal/config"
	"msort/internal/logutil"
	"msort/internal/msort"
	"msort/internal/store"
)

var quickSize int

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "benchmark every sort mode",
	Long: "bench runs sizes x modes x runs and writes benchmark_results.md/json.\n" +
		"With --quick N it only times sequential against task_based on N random ints and checks both outputs match.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if quickSize > 0 {
			return runQuick(runCfg, quickSize)
		}
		return runSuite(runCfg)
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "print benchmark results kept in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runCfg.Store.Kind == "" {
			return errors.New("no store configured, set --store")
		}
		st, err := store.Open(runCfg.Store.Kind, runCfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		results, err := bench.LoadResults(st)
		if err != nil {
			return err
		}
		fmt.Print(bench.RenderMarkdown(results, time.Now()))
		return nil
	},
}

func init() {
	f := benchCmd.Flags()
	f.IntVar(&quickSize, "quick", 0, "only compare sequential and task_based on this many ints")
	f.IntSlice("sizes", config.Default().Bench.Sizes, "data sizes")
	f.Int("runs", config.Default().Bench.Runs, "runs per mode and size")
	f.String("out", ".", "report directory")
	v.BindPFlag("bench.sizes", f.Lookup("sizes"))
	v.BindPFlag("bench.runs", f.Lookup("runs"))
	v.BindPFlag("bench.out", f.Lookup("out"))

	for _, c := range []*cobra.Command{benchCmd, resultsCmd} {
		c.Flags().String("store", "", "persist datasets and results: bbolt, badger, pebble")
		c.Flags().String("store-path", config.Default().Store.Path, "store directory")
	}
	// 두 명령 중 실제로 실행되는 쪽의 플래그를 바인딩한다
	benchCmd.PreRun = bindStoreFlags
	resultsCmd.PreRun = bindStoreFlags
}

func bindStoreFlags(cmd *cobra.Command, args []string) {
	v.BindPFlag("store.kind", cmd.Flags().Lookup("store"))
	v.BindPFlag("store.path", cmd.Flags().Lookup("store-path"))
	runCfg.Store.Kind = v.GetString("store.kind")
	runCfg.Store.Path = v.GetString("store.path")
}

// runQuick 순차 정렬과 작업 기반 정렬 시간을 재고 두 결과가 같은지 확인한다
func runQuick(cfg config.Config, size int) error {
	fmt.Printf("Array size: %s\n", humanize.Comma(int64(size)))
	data := bench.GenerateData(size, cfg.Bench.Max, time.Now().UnixNano())

	sorter, closePool, err := newSorter(cfg)
	if err != nil {
		return err
	}
	defer closePool()

	sorter.Mode = msort.ModeSequential
	seqResult, seqSorted, err := bench.Run(sorter, data, bench.StorageMemory)
	if err != nil {
		return err
	}
	fmt.Printf("Sequential merge sort time: %.2f seconds\n", seqResult.Duration.Seconds())
	fmt.Printf("Number of threads available: %d\n", runtime.GOMAXPROCS(0))

	sorter.Mode = msort.ModeTaskBased
	taskResult, taskSorted, err := bench.Run(sorter, data, bench.StorageMemory)
	if err != nil {
		return err
	}
	fmt.Printf("Parallel merge sort time: %.2f seconds\n", taskResult.Duration.Seconds())

	if idx := bench.FirstMismatch(taskSorted, seqSorted); idx >= 0 {
		return errors.Newf("sorting results do not match at index %d", idx)
	}
	fmt.Println("Results match")
	return nil
}

func runSuite(cfg config.Config) error {
	log := logutil.L()
	fmt.Printf("CPU cores: %d\n", runtime.NumCPU())
	fmt.Printf("GOMAXPROCS: %d\n\n", runtime.GOMAXPROCS(0))

	sorter, closePool, err := newSorter(cfg)
	if err != nil {
		return err
	}
	defer closePool()

	suite := bench.SuiteConfig{
		Sizes:        cfg.Bench.Sizes,
		Runs:         cfg.Bench.Runs,
		Budget:       cfg.Sort.Threads,
		Tasks:        sorter.Tasks,
		Max:          cfg.Bench.Max,
		Seed:         cfg.Bench.Seed,
		FileModeFrom: cfg.Bench.FileModeFrom,
		Dir:          cfg.Bench.Out,
	}
	if cfg.Store.Kind != "" {
		st, err := store.Open(cfg.Store.Kind, cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		suite.Store = st
		log.Info("persisting benchmark data",
			zap.String("store", cfg.Store.Kind),
			zap.String("path", cfg.Store.Path))
	}

	results, err := bench.Suite(suite)
	if err != nil {
		return err
	}

	mdPath := filepath.Join(cfg.Bench.Out, "benchmark_results.md")
	if err := bench.SaveMarkdown(results, mdPath); err != nil {
		return err
	}
	fmt.Printf("%s written\n", mdPath)

	jsonPath := filepath.Join(cfg.Bench.Out, "benchmark_results.json")
	if err := bench.SaveJSON(results, jsonPath); err != nil {
		return err
	}
	fmt.Printf("%s written\n", jsonPath)

	for _, r := range results {
		if !r.Verified {
			return errors.Newf("%s output differs from reference at size %d", r.Mode, r.DataSize)
		}
	}
	return nil
}
