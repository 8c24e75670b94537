package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recordprep/internal/batch"
	"github.com/recordprep/internal/export"
	"github.com/recordprep/internal/observe"
	"github.com/recordprep/internal/schema"
	"github.com/recordprep/internal/store"
	"github.com/recordprep/internal/table"
)

// createStandardizeCmd creates the addresses or names subcommand
func createStandardizeCmd(a *app, mode schema.Mode) *cobra.Command {
	var (
		out, format     string
		dbDriver, dbDSN string
		workers         int
	)
	use, short := "addresses FILE...", "Standardize address tables (CSV or XLSX)"
	if mode == schema.NameMode {
		use, short = "names FILE...", "Standardize name tables (CSV or XLSX)"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Changed("workers") {
				a.cfg.Batch.Workers = workers
			}
			if cmd.Flags().Changed("db-driver") {
				a.cfg.Database.Driver = dbDriver
			}
			if cmd.Flags().Changed("db-dsn") {
				a.cfg.Database.DSN = dbDSN
			}
			if err := a.cfg.Validate(); err != nil {
				log.Fatalf("Invalid configuration: %v", err)
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				log.Fatalf("Invalid format: %v", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if _, err := a.standardize(ctx, mode, args, out, f, os.Stdout); err != nil {
				log.Fatalf("Failed to standardize %s tables: %v", mode, err)
			}
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "output", "output directory")
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or xlsx")
	cmd.Flags().StringVar(&dbDriver, "db-driver", "", "save the run to a database: postgres or sqlite")
	cmd.Flags().StringVar(&dbDSN, "db-dsn", "", "database connection string")
	cmd.Flags().IntVar(&workers, "workers", 1, "tables processed concurrently")
	return cmd
}

// standardize runs one batch over the files at paths, writes the outputs to
// out and, when a database is configured, saves the run. It fails only when
// inputs cannot be read or outputs cannot be written, or when no table could
// be processed.
func (a *app) standardize(ctx context.Context, mode schema.Mode, paths []string, out string, format export.Format, w io.Writer) (batch.Summary, error) {
	tables, err := readTables(paths)
	if err != nil {
		return batch.Summary{}, err
	}
	opts, err := a.cfg.StandardizerOptions()
	if err != nil {
		return batch.Summary{}, err
	}
	std := batch.New(opts, observe.NewZap(a.log))
	writer := export.NewWriter(out, format)

	st, err := a.openStore(ctx)
	if err != nil {
		return batch.Summary{}, err
	}
	if st != nil {
		defer st.Close()
	}

	var (
		summary  batch.Summary
		failures []*batch.TableFailure
		written  []string
	)
	switch mode {
	case schema.NameMode:
		res := std.StandardizeNames(ctx, tables)
		summary, failures = res.Summary, res.Failures
		if written, err = writer.WriteNames(res); err != nil {
			return summary, err
		}
		if st != nil {
			err = st.SaveNameResult(ctx, res)
		}
	default:
		res := std.StandardizeAddresses(ctx, tables)
		summary, failures = res.Summary, res.Failures
		if written, err = writer.WriteAddresses(res); err != nil {
			return summary, err
		}
		if st != nil {
			err = st.SaveAddressResult(ctx, res)
		}
	}
	if err != nil {
		return summary, fmt.Errorf("failed to save run: %w", err)
	}

	for _, f := range failures {
		a.log.Warn("table failed", zap.String("file", f.Label), zap.Error(f.Unwrap()))
	}
	printSummary(w, summary, written)

	if summary.TotalFiles > 0 && summary.Succeeded == 0 {
		return summary, fmt.Errorf("none of the %d tables could be processed", summary.TotalFiles)
	}
	return summary, nil
}

func readTables(paths []string) ([]table.Table, error) {
	tables := make([]table.Table, 0, len(paths))
	for _, p := range paths {
		t, err := table.ReadFile(p)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// openStore returns nil when no database is configured.
func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	db := a.cfg.Database
	if !db.Enabled() {
		return nil, nil
	}
	st, err := store.Open(ctx, db.Driver, db.DSN, db.MaxConnections, a.log)
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func printSummary(w io.Writer, s batch.Summary, written []string) {
	fmt.Fprintf(w, "Run %s (%s mode) finished in %s\n", s.RunID, s.Mode, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Files: %d processed, %d succeeded, %d failed\n", s.TotalFiles, s.Succeeded, s.Failed)
	for _, f := range s.Files {
		if f.Status == batch.StatusFailed {
			fmt.Fprintf(w, "  %s: FAILED: %s\n", f.Label, f.Error)
			continue
		}
		fmt.Fprintf(w, "  %s: %d rows, %d qualified, %d disqualified\n", f.Label, f.OutputRows, f.Qualified, f.Disqualified)
		for _, n := range f.Notes {
			fmt.Fprintf(w, "    note: %s\n", n)
		}
	}
	if s.Mode == schema.NameMode {
		fmt.Fprintf(w, "Names: %d total, %d valid, average score %.2f\n", s.TotalRows, s.Qualified, s.AverageScore)
	} else {
		fmt.Fprintf(w, "Addresses: %d total, %d qualified (%.1f%%), %d rows without address data removed\n",
			s.TotalRows, s.Qualified, s.QualifiedRate*100, s.RemovedNoData)
	}

	reasons := s.TopErrors
	if s.Mode == schema.NameMode {
		reasons = s.TopIssues
	}
	if len(reasons) > 0 {
		fmt.Fprintln(w, "Top reasons:")
		for i, r := range reasons {
			if i == 5 {
				break
			}
			fmt.Fprintf(w, "  %-40s %d\n", r.Reason, r.Count)
		}
	}
	if len(written) > 0 {
		fmt.Fprintln(w, "Wrote:")
		for _, p := range written {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
}
