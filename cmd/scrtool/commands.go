package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var commandsExport string

var commandsCmd = &cobra.Command{
	Use:          "commands",
	Short:        "List the known script commands",
	SilenceUsage: true,
	RunE:         runCommands,
}

func init() {
	commandsCmd.Flags().StringVar(&commandsExport, "export", "", "write a flat name-per-line list to the given file, or - for stdout")
}

func runCommands(cmd *cobra.Command, _ []string) error {
	_, table := loadProject()
	if commandsExport != "" {
		if commandsExport == "-" {
			return table.Export(os.Stdout)
		}
		f, err := os.Create(commandsExport)
		if err != nil {
			return err
		}
		if err := table.Export(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	for _, name := range table.Names() {
		c, _ := table.Lookup(name)
		switch {
		case c.EventVar != "" && c.File != "":
			fmt.Printf("%-24s %s (%s)\n", name, c.EventVar, c.File)
		case c.EventVar != "":
			fmt.Printf("%-24s %s\n", name, c.EventVar)
		default:
			fmt.Println(name)
		}
	}
	return nil
}
