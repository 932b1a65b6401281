// Package repsctl is the command line companion of the weeklyreps service. It
// works against the same config file and storage as the service does.
package repsctl

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/2beens/weeklyreps/internal/challenge"
	"github.com/2beens/weeklyreps/internal/config"
	"github.com/2beens/weeklyreps/internal/db"
	"github.com/2beens/weeklyreps/internal/reps"
	"github.com/2beens/weeklyreps/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	env        string
	configPath string
	now        func() time.Time
}

// NewRootCmd builds the repsctl command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(time.Now)
}

func newRootCmd(now func() time.Time) *cobra.Command {
	opts := &options{now: now}

	rootCmd := &cobra.Command{
		Use:   "repsctl",
		Short: "repsctl - weekly reps challenge from the terminal",
		Long: `repsctl reads and logs reps of the weekly reps challenge, using the same
config file and storage as the weeklyreps service.

Examples:
  repsctl week --date 2025-12-22
  repsctl status --person Felipe
  repsctl log --person Kaden --exercise squat --reps 50
  repsctl list`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.env, "env", "e", "development", "environment [prod | production | dev | development]")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "./config.toml", "path for the TOML config file")

	rootCmd.AddCommand(
		newWeekCmd(opts),
		newStatusCmd(opts),
		newLogCmd(opts),
		newListCmd(opts),
		newHashSecretCmd(),
	)

	return rootCmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) loadChallenge() (*config.Config, challenge.Challenge, error) {
	cfg, err := config.Load(o.env, o.configPath)
	if err != nil {
		return nil, challenge.Challenge{}, err
	}
	setup, err := cfg.Challenge.Build()
	if err != nil {
		return nil, challenge.Challenge{}, err
	}
	return cfg, setup, nil
}

// openRepo opens the configured storage. The returned close func must always be called.
func (o *options) openRepo(ctx context.Context) (reps.Repo, challenge.Challenge, func(), error) {
	cfg, setup, err := o.loadChallenge()
	if err != nil {
		return nil, challenge.Challenge{}, nil, err
	}

	params := reps.OpenParams{
		Config:         cfg,
		Calendar:       setup.Calendar,
		MetricsManager: metrics.NewManager("weeklyreps", "repsctl", prometheus.NewRegistry()),
	}

	closeAll := func() {}
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warnln("memory storage selected, nothing logged here outlives this command")
	case config.StorageSheets:
		credentialsPath := os.Getenv("WEEKLYREPS_SHEETS_CREDENTIALS")
		if credentialsPath == "" {
			return nil, challenge.Challenge{}, nil, fmt.Errorf("sheets credentials not set, use WEEKLYREPS_SHEETS_CREDENTIALS")
		}
		params.SheetsCredentialsJSON, err = os.ReadFile(credentialsPath)
		if err != nil {
			return nil, challenge.Challenge{}, nil, fmt.Errorf("read sheets credentials: %w", err)
		}
	case config.StoragePostgres:
		params.DBPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:     cfg.PostgresHost,
			DBPort:     cfg.PostgresPort,
			DBName:     cfg.PostgresDBName,
			DBUser:     cfg.PostgresUser,
			DBPassword: os.Getenv("WEEKLYREPS_POSTGRES_PASS"),
			MaxConns:   2,
		})
		if err != nil {
			return nil, challenge.Challenge{}, nil, fmt.Errorf("new db pool: %w", err)
		}
		closeAll = params.DBPool.Close
	}

	repo, closeRepo, err := reps.Open(ctx, params)
	if err != nil {
		closeAll()
		return nil, challenge.Challenge{}, nil, err
	}

	return repo, setup, func() {
		closeRepo()
		closeAll()
	}, nil
}

func printDiagnostic(w io.Writer, skipped int) {
	if skipped > 0 {
		fmt.Fprintf(w, "(%d invalid records skipped)\n", skipped)
	}
}
