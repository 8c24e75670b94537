package main

import (
	"encoding/json"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recordprep/internal/batch"
	"github.com/recordprep/internal/observe"
)

// createParseCmd creates the parse subcommand
func createParseCmd(a *app) *cobra.Command {
	parseCmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse, clean and qualify a single value",
	}
	parseCmd.AddCommand(&cobra.Command{
		Use:     "address TEXT",
		Short:   "Parse one free-text address",
		Example: `  recordprep parse address "123 Main St, Springfield, IL 62701"`,
		Args:    cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			std := a.standardizer()
			printJSON(std.InspectAddress(strings.Join(args, " "), "cli"))
		},
	})
	parseCmd.AddCommand(&cobra.Command{
		Use:     "name TEXT",
		Short:   "Parse one full name",
		Example: `  recordprep parse name "Smith, Dr. John A."`,
		Args:    cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			std := a.standardizer()
			printJSON(std.InspectName(strings.Join(args, " "), "cli"))
		},
	})
	return parseCmd
}

func (a *app) standardizer() *batch.Standardizer {
	opts, err := a.cfg.StandardizerOptions()
	if err != nil {
		log.Fatalf("Failed to configure standardizer: %v", err)
	}
	return batch.New(opts, observe.NewZap(a.log))
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
}
