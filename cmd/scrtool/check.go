package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/scr-community/scr-dev-tools/internal/checker"
	"github.com/scr-community/scr-dev-tools/internal/commands"
	"github.com/scr-community/scr-dev-tools/internal/validator"
)

var (
	checkJobs       int
	checkNoExternal bool
	checkCommands   string
)

var checkCmd = &cobra.Command{
	Use:           "check <file>...",
	Short:         "Validate scripts and print diagnostics",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCheck,
}

func init() {
	checkCmd.Flags().IntVarP(&checkJobs, "jobs", "j", 4, "number of files checked in parallel")
	checkCmd.Flags().BoolVar(&checkNoExternal, "no-checker", false, "skip the external semantic checker")
	checkCmd.Flags().StringVar(&checkCommands, "commands", "", "extra command table JSON layered over the built-in one")
}

var (
	errorLabel = color.New(color.FgRed, color.Bold).Sprint("error")
	warnLabel  = color.New(color.FgYellow).Sprint("warning")
)

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, table := loadProject()
	if checkCommands != "" {
		extra, err := commands.Load(checkCommands)
		if err != nil {
			return fmt.Errorf("load %s: %w", checkCommands, err)
		}
		table.Merge(extra)
	}
	var runner checker.Runner
	if !checkNoExternal && cfg.Checker.Binary != "" {
		runner = &checker.ProcessRunner{
			Binary: cfg.Checker.Binary,
			Args:   cfg.Checker.Args,
			Table:  table,
		}
	}

	var (
		mu               sync.Mutex
		errors, warnings int
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(checkJobs)
	for _, path := range args {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			text := string(data)
			diags := validator.Validate(validator.Document{URI: path, Text: text}, table)
			if runner != nil {
				diags = append(diags, checker.Check(ctx, runner, path, text, nil)...)
			}

			mu.Lock()
			defer mu.Unlock()
			for _, d := range diags {
				label := errorLabel
				if d.Level == validator.LevelWarning {
					label = warnLabel
					warnings++
				} else {
					errors++
				}
				fmt.Printf("%s:%d:%d: %s: %s\n",
					path, d.Range.Start.Line+1, d.Range.Start.Col+1, label, d.Message)
				for _, rel := range d.Related {
					fmt.Printf("\t%s:%d: %s\n", rel.URI, rel.Range.Start.Line+1, rel.Message)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if errors+warnings > 0 {
		fmt.Printf("%d error(s), %d warning(s) in %d file(s)\n", errors, warnings, len(args))
	}
	if errors > 0 {
		return fmt.Errorf("%d error(s)", errors)
	}
	return nil
}
