package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/scr-community/scr-dev-tools/internal/logger"
	"github.com/scr-community/scr-dev-tools/internal/lsp"
)

var lspDebug bool

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().BoolVar(&lspDebug, "debug", false, "enable debug logging")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	// Stdout carries the protocol, so all logging goes to files.
	logger.SetDebug(lspDebug)
	logPath, err := logger.UseFile()
	verbosity := 1
	if lspDebug {
		verbosity = 2
	}
	if err == nil {
		protocolLog := filepath.Join(filepath.Dir(logPath), "protocol.log")
		commonlog.Configure(verbosity, &protocolLog)
	} else {
		commonlog.Configure(verbosity, nil)
	}

	lsp.Version = version
	return lsp.NewServer().RunStdio()
}
