// Command vitals is the operator CLI: it computes readiness, reports workout trends,
// tracks training plans and loads export batches without going through the HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/app"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/config"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/platform/logging"
)

type globalOptions struct {
	configPath string
	output     string
}

func main() {
	boot := zerolog.New(os.Stderr)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		boot.Warn().Err(err).Msg("failed to read .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:          "vitals",
		Short:        "Readiness score and workout trend engine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateOutput(opts.output)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputJSON, "output format: json|yaml")

	root.AddCommand(
		readinessCmd(opts),
		trendsCmd(opts),
		historyCmd(opts),
		ingestCmd(opts),
		planCmd(opts),
		initDBCmd(opts),
	)
	return root
}

// loadConfig reads and validates the layered configuration and builds the logger.
// Logs go to the command's error stream so stdout carries only results.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.NewWithWriter(cfg.Log, cmd.ErrOrStderr()), nil
}

// withApp runs fn against a fully wired App and closes it afterwards.
func withApp(cmd *cobra.Command, opts *globalOptions, fn func(*app.App) error) error {
	cfg, logger, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}
	defer a.Close()

	return fn(a)
}
