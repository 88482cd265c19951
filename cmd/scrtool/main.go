package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scr-community/scr-dev-tools/internal/commands"
	"github.com/scr-community/scr-dev-tools/internal/config"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "scrtool",
	Short: "Tools for Morpheus game scripts",
	Long:  "scrtool validates, formats and serves editor features for .scr game scripts",
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(commandsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadProject resolves the config and command table governing the working
// directory.
func loadProject() (config.Config, *commands.Table) {
	cfg, root := config.LoadForDir(".")
	extra := make([]string, 0, len(cfg.Commands))
	for _, p := range cfg.Commands {
		if !filepath.IsAbs(p) && root != "" {
			p = filepath.Join(root, p)
		}
		extra = append(extra, p)
	}
	return cfg, commands.LoadFull(root, extra...)
}
