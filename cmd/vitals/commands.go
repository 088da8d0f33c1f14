package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/app"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/services"
)

// parseDayFlag returns fallback for an empty flag value.
func parseDayFlag(name, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := domain.ParseDay(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func today() time.Time {
	return domain.Day(time.Now().UTC())
}

func readinessCmd(opts *globalOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Compute and store the readiness score for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDayFlag("date", date, today())
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app.App) error {
				record, err := a.Readiness.ComputeReadiness(cmd.Context(), day)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, record)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to score (YYYY-MM-DD, default today)")
	return cmd
}

func trendsCmd(opts *globalOptions) *cobra.Command {
	var (
		weeks   int
		view    string
		endDate string
	)

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Report weekly workout aggregates and progression",
		RunE: func(cmd *cobra.Command, args []string) error {
			end, err := parseDayFlag("end-date", endDate, time.Time{})
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app.App) error {
				if weeks == 0 {
					weeks = a.Trends.DefaultWeeks()
				}
				report, err := a.Trends.ComputeTrends(cmd.Context(), domain.TrendQuery{
					Weeks:   weeks,
					View:    domain.TrendView(view),
					EndDate: end,
				})
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, report)
			})
		},
	}
	cmd.Flags().IntVar(&weeks, "weeks", 0, "window length in weeks (default from config)")
	cmd.Flags().StringVar(&view, "view", string(domain.ViewCombined), "view: run|cycle|swim|strength|combined")
	cmd.Flags().StringVar(&endDate, "end-date", "", "last day of the window (YYYY-MM-DD, default today)")
	return cmd
}

func historyCmd(opts *globalOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored readiness records",
		RunE: func(cmd *cobra.Command, args []string) error {
			toDay, err := parseDayFlag("to", to, today())
			if err != nil {
				return err
			}
			fromDay, err := parseDayFlag("from", from, toDay.AddDate(0, 0, -30))
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app.App) error {
				records, err := a.Readiness.ListReadiness(cmd.Context(), fromDay, toDay)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, records)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD, default 30 days before --to)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD, default today)")
	return cmd
}

// dateCollector records the days an ingest touched so the CLI can score them inline.
type dateCollector struct {
	dates map[string]time.Time
}

func (c *dateCollector) Enqueue(date time.Time) {
	c.dates[domain.FormatDay(date)] = domain.Day(date)
}

func (c *dateCollector) sorted() []time.Time {
	out := make([]time.Time, 0, len(c.dates))
	for _, d := range c.dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

type ingestSummary struct {
	Ingest    *domain.IngestResult     `json:"ingest"`
	Readiness []domain.ReadinessRecord `json:"readiness"`
	Pending   []string                 `json:"pending"`
}

func ingestCmd(opts *globalOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load an export batch and score the affected days",
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := readBatch(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app.App) error {
				collector := &dateCollector{dates: make(map[string]time.Time)}
				ingest := services.NewIngestService(a.Store, collector, app.RecomputeWindows(a.Config), a.Logger)

				result, err := ingest.Ingest(cmd.Context(), batch)
				if err != nil {
					return err
				}

				summary := ingestSummary{
					Ingest:    result,
					Readiness: []domain.ReadinessRecord{},
					Pending:   []string{},
				}
				for _, day := range collector.sorted() {
					record, err := a.Readiness.ComputeReadiness(cmd.Context(), day)
					if errors.Is(err, domain.ErrDataNotFound) {
						a.Logger.Warn().Err(err).Str("date", domain.FormatDay(day)).Msg("not enough data to score")
						summary.Pending = append(summary.Pending, domain.FormatDay(day))
						continue
					}
					if err != nil {
						return err
					}
					summary.Readiness = append(summary.Readiness, *record)
				}
				return render(cmd.OutOrStdout(), opts.output, summary)
			})
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "export batch JSON file (\"-\" reads stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readBatch(stdin io.Reader, path string) (*domain.IngestBatch, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading batch: %w", err)
	}

	var batch domain.IngestBatch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("%w: batch is not valid JSON: %v", domain.ErrInvalidArgument, err)
	}
	return &batch, nil
}

func initDBCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the storage tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			db, err := app.OpenDatabase(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.EnsureSchema(cmd.Context(), db); err != nil {
				return err
			}
			logger.Info().Str("driver", cfg.Database.Driver).Msg("schema ready")
			return render(cmd.OutOrStdout(), opts.output, map[string]string{
				"driver": cfg.Database.Driver,
				"status": "ready",
			})
		},
	}
}
