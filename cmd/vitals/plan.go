package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/app"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

func planCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Store training plans and compare them with logged workouts",
	}
	cmd.AddCommand(planSetCmd(opts), planStatusCmd(opts))
	return cmd
}

func planSetCmd(opts *globalOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a training plan from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := readPlan(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app.App) error {
				saved, err := a.Plans.SavePlan(cmd.Context(), plan)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, saved)
			})
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "plan JSON file (\"-\" reads stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func planStatusCmd(opts *globalOptions) *cobra.Command {
	var weekStart, asOf string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Compare a plan with the workouts logged so far",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDayFlag("week-start", weekStart, time.Time{})
			if err != nil {
				return err
			}
			day, err := parseDayFlag("as-of", asOf, time.Time{})
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app.App) error {
				var report *domain.PlanCompliance
				if start.IsZero() {
					report, err = a.Plans.LatestCompliance(cmd.Context(), day)
				} else {
					report, err = a.Plans.Compliance(cmd.Context(), start, day)
				}
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, report)
			})
		},
	}
	cmd.Flags().StringVar(&weekStart, "week-start", "", "first day of the plan (YYYY-MM-DD, default latest plan)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "last day counted (YYYY-MM-DD, default today)")
	return cmd
}

func readPlan(stdin io.Reader, path string) (*domain.TrainingPlan, error) {
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
		return nil, fmt.Errorf("reading plan: %w", err)
	}

	var plan domain.TrainingPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("%w: plan is not valid JSON: %v", domain.ErrInvalidArgument, err)
	}
	return &plan, nil
}
