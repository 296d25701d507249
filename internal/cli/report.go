package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"trade-report/internal/ingest"
	"trade-report/internal/logging"
	"trade-report/internal/performance"
	"trade-report/internal/security"
)

// batchEntry is one document's outcome in a multi-file run.
type batchEntry struct {
	File   string         `json:"file" yaml:"file"`
	Result *ingest.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string         `json:"error,omitempty" yaml:"error,omitempty"`
}

func newReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Parse trade reports",
		Long:  "Parse MT4/MT5 performance reports (.pdf or form-feed paged .txt).",
	}
	cmd.AddCommand(newReportSummaryCmd(app))
	cmd.AddCommand(newReportTradesCmd(app))
	return cmd
}

func newReportSummaryCmd(app *App) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "summary <file>...",
		Short: "Show sections and derived metrics of one or more reports",
		Example: `  trade-report report summary statement.pdf
  trade-report report summary --format json q1.pdf q2.pdf q3.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			svc, err := app.Service(false)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				res, err := svc.ProcessFile(cmd.Context(), args[0], ingest.Upload{Mode: security.ModeSummary})
				if err != nil {
					return err
				}
				if output.IsStructured() {
					return output.Emit(res.Summary)
				}
				RenderSummary(output, res.Document, res.Summary)
				return nil
			}

			if workers <= 0 {
				workers = app.Config.Batch.Workers
			}
			entries := summarizeAll(cmd.Context(), svc, args, workers)
			return renderBatch(output, entries)
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "documents parsed in parallel (default from config)")
	return cmd
}

// summarizeAll parses several documents on a worker pool. Results keep the
// order of paths.
func summarizeAll(ctx context.Context, svc *ingest.Service, paths []string, workers int) []batchEntry {
	pool := performance.NewWorkerPool(workers)
	pool.Start()
	defer pool.Stop()

	logger := logging.FromContext(ctx)
	outcomes := performance.Map(ctx, pool, paths, func(ctx context.Context, path string) (*ingest.Result, error) {
		return svc.ProcessFile(ctx, path, ingest.Upload{Mode: security.ModeSummary})
	})

	entries := make([]batchEntry, len(outcomes))
	for i, o := range outcomes {
		entries[i] = batchEntry{File: paths[i], Result: o.Value}
		if o.Err != nil {
			entries[i].Error = o.Err.Error()
			logger.Warn().Err(o.Err).Str("document", filepath.Base(paths[i])).Msg("Report skipped")
		}
	}
	stats := pool.Stats()
	logger.Debug().
		Int("documents", len(paths)).
		Int("workers", stats.Workers).
		Uint64("tasks_submitted", stats.TasksTotal).
		Msg("Batch parsed")
	return entries
}

func renderBatch(output *Output, entries []batchEntry) error {
	failed := 0
	for _, e := range entries {
		if e.Error != "" {
			failed++
		}
	}

	if output.IsStructured() {
		if err := output.Emit(entries); err != nil {
			return err
		}
	} else {
		for i, e := range entries {
			if i > 0 {
				output.Println()
			}
			if e.Error != "" {
				output.Error("%s: %s", e.File, e.Error)
				continue
			}
			RenderSummary(output, e.Result.Document, e.Result.Summary)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(entries))
	}
	return nil
}

func newReportTradesCmd(app *App) *cobra.Command {
	var (
		strategy string
		owner    string
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "trades <file>",
		Short: "Extract the trade history of a report",
		Example: `  trade-report report trades history.pdf
  trade-report report trades history.pdf --strategy "London breakout" --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			svc, err := app.Service(save)
			if err != nil {
				return err
			}
			if owner == "" {
				owner = app.Config.Store.OwnerID
			}

			res, err := svc.ProcessFile(cmd.Context(), args[0], ingest.Upload{
				Mode:         security.ModeTrades,
				StrategyName: strings.TrimSpace(strategy),
				OwnerID:      owner,
				Save:         save,
			})
			if err != nil {
				return err
			}

			if output.IsStructured() {
				return output.Emit(res)
			}
			RenderImport(output, res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "strategy name recorded on the trades")
	cmd.Flags().StringVar(&owner, "owner", "", "owner recorded on saved trades (default from config)")
	cmd.Flags().BoolVar(&save, "save", false, "store the trades in the local database")
	return cmd
}
