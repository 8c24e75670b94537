package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recordprep/internal/export"
	"github.com/recordprep/internal/sample"
)

// createSampleCmd creates the sample subcommand
func createSampleCmd(a *app) *cobra.Command {
	var (
		format string
		rows   int
		seed   int64
		out    string
	)
	names := make([]string, 0, len(sample.Formats()))
	for _, f := range sample.Formats() {
		names = append(names, string(f))
	}

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a synthetic input table",
		Long:  "Generate a synthetic input table in one of these layouts: " + strings.Join(names, ", "),
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if out == "" {
				out = format + ".csv"
			}
			if err := writeSample(sample.Format(format), rows, seed, out); err != nil {
				log.Fatalf("Failed to generate sample: %v", err)
			}
			a.log.Info("wrote sample", zap.String("format", format), zap.Int("rows", rows), zap.String("path", out))
		},
	}
	cmd.Flags().StringVar(&format, "format", string(sample.Standard), "column layout")
	cmd.Flags().IntVar(&rows, "rows", 100, "number of records")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed; 0 picks one")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, .csv or .xlsx (default <format>.csv)")
	return cmd
}

// writeSample generates a table and writes it as CSV or XLSX depending on
// the extension of path.
func writeSample(format sample.Format, rows int, seed int64, path string) error {
	t, err := sample.Generate(format, rows, seed)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	f, err := export.ParseFormat(ext)
	if err != nil {
		return err
	}
	if f == export.XLSX {
		return export.WriteXLSX(path, string(format), t.Columns, t.Rows)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteCSV(file, t.Columns, t.Rows); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
