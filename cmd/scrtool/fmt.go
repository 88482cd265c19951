package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scr-community/scr-dev-tools/internal/formatter"
	"github.com/scr-community/scr-dev-tools/internal/scan"
)

var (
	fmtWrite  bool
	fmtCheck  bool
	fmtSpaces bool
	fmtWidth  int
)

var fmtCmd = &cobra.Command{
	Use:           "fmt <file>...",
	Short:         "Re-indent scripts",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runFmt,
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "rewrite files in place instead of printing")
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "list files that would change, exit non-zero if any")
	fmtCmd.Flags().BoolVar(&fmtSpaces, "spaces", false, "indent with spaces instead of the configured style")
	fmtCmd.Flags().IntVar(&fmtWidth, "width", 0, "spaces per indent level (with --spaces)")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cfg, _ := loadProject()
	opts := cfg.FormatterOptions()
	if fmtSpaces {
		opts.InsertSpaces = true
	}
	if fmtWidth > 0 {
		opts.TabSize = fmtWidth
	}

	changed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		text := string(data)
		edits := formatter.Format(text, opts)
		if len(edits) == 0 {
			if !fmtWrite && !fmtCheck {
				fmt.Print(text)
			}
			continue
		}
		changed++
		switch {
		case fmtCheck:
			fmt.Println(path)
		case fmtWrite:
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(applyEdits(text, edits)), info.Mode().Perm()); err != nil {
				return err
			}
		default:
			fmt.Print(applyEdits(text, edits))
		}
	}
	if fmtCheck && changed > 0 {
		return fmt.Errorf("%d file(s) not formatted", changed)
	}
	return nil
}

func applyEdits(text string, edits []formatter.Edit) string {
	lines := scan.SplitLines(text)
	for _, e := range edits {
		if e.Line >= 0 && e.Line < len(lines) {
			lines[e.Line] = e.NewText
		}
	}
	return strings.Join(lines, "\n")
}
