package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"msort/internal/config"
	"msort/internal/logutil"
	"msort/internal/msort"
	"msort/internal/taskpool"
)

var (
	cfgFile string
	// 각 명령 파일의 init 에서 플래그를 바인딩하므로 init 보다 먼저 만든다
	v      = config.NewViper("")
	runCfg config.Config
)

var RootCmd = &cobra.Command{
	Use:          "msort",
	Short:        "parallel merge sort engine",
	Long:         "sequential, thread-bounded and task-based merge sort with a benchmark harness",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logutil.L().Sync()
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use msort --help or -h")
	},
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./msort.toml or $HOME/.msort/msort.toml)")
	pf.String("log-level", "info", "log level")
	pf.Bool("log-dev", false, "development logger")
	pf.String("mode", "task_based", "sort mode: sequential, thread_bounded, task_based")
	pf.Int("threads", 4, "thread budget for thread_bounded")
	pf.Int("task-threshold", msort.TaskThreshold, "task_based: only sub-sequences longer than this are submitted")
	pf.Int("workers", 0, "task pool workers (0 = NumCPU)")

	v.BindPFlag("log.level", pf.Lookup("log-level"))
	v.BindPFlag("log.development", pf.Lookup("log-dev"))
	v.BindPFlag("sort.mode", pf.Lookup("mode"))
	v.BindPFlag("sort.threads", pf.Lookup("threads"))
	v.BindPFlag("sort.taskThreshold", pf.Lookup("task-threshold"))
	v.BindPFlag("pool.workers", pf.Lookup("workers"))

	RootCmd.AddCommand(sortCmd, demoCmd, benchCmd, resultsCmd, planCmd, lifecycleCmd, configCmd)
}

func loadConfig() error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	runCfg = cfg

	l, err := logutil.New(runCfg.Log.Level, runCfg.Log.Development)
	if err != nil {
		return err
	}
	logutil.Set(l)
	if used := v.ConfigFileUsed(); used != "" {
		l.Debug("config loaded", zap.String("file", used))
	}
	return nil
}

// newSorter 설정에 맞는 정렬기. 작업 풀을 따로 만들었으면 닫는 함수도 돌려준다
func newSorter(cfg config.Config) (msort.Sorter, func(), error) {
	mode, err := msort.ParseMode(cfg.Sort.Mode)
	if err != nil {
		return msort.Sorter{}, nil, err
	}

	pool := taskpool.Default()
	closePool := func() {}
	if cfg.Pool.Workers > 0 && cfg.Pool.Workers != runtime.NumCPU() {
		pool = taskpool.New(cfg.Pool.Workers,
			taskpool.WithLogger(logutil.L().Named("taskpool")))
		closePool = pool.Close
	}

	return msort.Sorter{
		Mode:   mode,
		Budget: cfg.Sort.Threads,
		Tasks:  msort.NewTaskSorter(pool, msort.WithThreshold(cfg.Sort.TaskThreshold)),
	}, closePool, nil
}
