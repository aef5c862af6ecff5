// Package config msort 실행 설정. viper 로 파일/환경변수/플래그를 합친다.
package config

import (
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const (
	FileName  = "msort"
	EnvPrefix = "MSORT"
)

type SortOptions struct {
	Mode          string `mapstructure:"mode" toml:"mode"`
	Threads       int    `mapstructure:"threads" toml:"threads"`
	TaskThreshold int    `mapstructure:"taskThreshold" toml:"taskThreshold"`
}

type PoolOptions struct {
	Workers int `mapstructure:"workers" toml:"workers"`
}

type BenchOptions struct {
	Sizes []int  `mapstructure:"sizes" toml:"sizes"`
	Runs  int    `mapstructure:"runs" toml:"runs"`
	Max   int    `mapstructure:"max" toml:"max"`
	Seed  int64  `mapstructure:"seed" toml:"seed"`
	Out   string `mapstructure:"out" toml:"out"`
	// FileModeFrom 이 크기 이상이면 파일로 내보냈다가 다시 읽어서 정렬한다
	FileModeFrom int `mapstructure:"fileModeFrom" toml:"fileModeFrom"`
}

type StoreOptions struct {
	Kind string `mapstructure:"kind" toml:"kind"`
	Path string `mapstructure:"path" toml:"path"`
}

type LogOptions struct {
	Level       string `mapstructure:"level" toml:"level"`
	Development bool   `mapstructure:"development" toml:"development"`
}

type Config struct {
	Sort  SortOptions  `mapstructure:"sort" toml:"sort"`
	Pool  PoolOptions  `mapstructure:"pool" toml:"pool"`
	Bench BenchOptions `mapstructure:"bench" toml:"bench"`
	Store StoreOptions `mapstructure:"store" toml:"store"`
	Log   LogOptions   `mapstructure:"log" toml:"log"`
}

// Default 설정 파일이 없을 때의 값
func Default() Config {
	return Config{
		Sort: SortOptions{
			Mode:          "task_based",
			Threads:       4,
			TaskThreshold: 1000,
		},
		Pool: PoolOptions{Workers: 0},
		Bench: BenchOptions{
			Sizes:        []int{1000, 10000, 100000, 1000000},
			Runs:         3,
			Max:          10000,
			Seed:         42,
			Out:          ".",
			FileModeFrom: 100000,
		},
		Store: StoreOptions{Kind: "", Path: "msort-data"},
		Log:   LogOptions{Level: "info"},
	}
}

// SetDefaults v 에 Default() 값을 기본값으로 등록한다
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("sort.mode", d.Sort.Mode)
	v.SetDefault("sort.threads", d.Sort.Threads)
	v.SetDefault("sort.taskThreshold", d.Sort.TaskThreshold)
	v.SetDefault("pool.workers", d.Pool.Workers)
	v.SetDefault("bench.sizes", d.Bench.Sizes)
	v.SetDefault("bench.runs", d.Bench.Runs)
	v.SetDefault("bench.max", d.Bench.Max)
	v.SetDefault("bench.seed", d.Bench.Seed)
	v.SetDefault("bench.out", d.Bench.Out)
	v.SetDefault("bench.fileModeFrom", d.Bench.FileModeFrom)
	v.SetDefault("store.kind", d.Store.Kind)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
}

// NewViper 기본값, 환경변수(MSORT_SORT_THREADS 등), 설정 파일 검색 경로를 갖춘 viper
func NewViper(cfgFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.msort")
	}
	return v
}

// Load 설정 파일을 읽고(없으면 무시) Config 로 풀어낸다
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 값 범위 검사
func (c Config) Validate() error {
	switch {
	case c.Sort.Threads < 0:
		return errors.Newf("sort.threads must be >= 0, got %d", c.Sort.Threads)
	case c.Sort.TaskThreshold < 0:
		return errors.Newf("sort.taskThreshold must be >= 0, got %d", c.Sort.TaskThreshold)
	case c.Pool.Workers < 0:
		return errors.Newf("pool.workers must be >= 0, got %d", c.Pool.Workers)
	case c.Bench.Runs < 1:
		return errors.Newf("bench.runs must be >= 1, got %d", c.Bench.Runs)
	case c.Bench.Max < 1:
		return errors.Newf("bench.max must be >= 1, got %d", c.Bench.Max)
	}
	for _, size := range c.Bench.Sizes {
		if size < 0 {
			return errors.Newf("bench.sizes must be >= 0, got %d", size)
		}
	}
	return nil
}

// Dump 설정을 TOML 로 쓴다
func Dump(w io.Writer, c Config) error {
	return errors.Wrap(toml.NewEncoder(w).Encode(c), "encode config")
}
