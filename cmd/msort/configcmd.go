package main

import (
	"os"

	"github.com/spf13/cobra"

	"msort/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "print the effective configuration as TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.Dump(os.Stdout, runCfg)
	},
}
