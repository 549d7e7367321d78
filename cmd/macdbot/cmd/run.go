package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/macdbot/broker/paper"
	"github.com/rustyeddy/macdbot/config"
	"github.com/rustyeddy/macdbot/engine"
	"github.com/rustyeddy/macdbot/journal"
	"github.com/rustyeddy/macdbot/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the decision engine against the paper broker",
	Long: `Run the polling decision loop. Prices come from a seeded random-walk
feed into the paper broker, so a run is reproducible for a given seed.

Existing journal history is replayed at startup to restore the open
position and the day-trade window; the engine never assumes a clean
start.

Example:
  macdbot run --config macdbot.yaml --seed 7`,
	RunE: runRun,
}

var (
	runConfigPath string
	runSeed       int64
	runBasePrice  float64
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 1, "random-walk seed for the paper price feed")
	runCmd.Flags().Float64Var(&runBasePrice, "base-price", 50.0, "starting price for the paper feed")
}

func loadConfig() (*config.Config, error) {
	// .env sits beside the binary in deployments; absence is fine.
	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if runConfigPath != "" {
		cfg, err = config.LoadFromFile(runConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}

	// Environment overrides for the knobs that differ per deployment.
	if v := os.Getenv("MACDBOT_SYMBOL"); v != "" {
		cfg.Trading.Symbol = v
	}
	if v := os.Getenv("MACDBOT_JOURNAL_DB"); v != "" {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = v
	}
	if v := os.Getenv("MACDBOT_METRICS_LISTEN"); v != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = v
	}
	if v := os.Getenv("MACDBOT_POLL_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("MACDBOT_POLL_SECONDS: %w", err)
		}
		cfg.Trading.PollIntervalSeconds = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	if cfg.Journal.Type == "sqlite" {
		return journal.NewSQLite(cfg.Journal.DBPath)
	}
	return journal.NewFile(cfg.Journal.FilePath)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	jnl, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jnl.Close()

	pb := paper.New(cfg.Account.StartingCash)
	feed := paper.NewRandomWalkFeed(pb, runBasePrice, 0.002, runSeed)

	orch := engine.New(cfg, engine.Collaborators{
		Data:    feed,
		Account: pb,
		Orders:  pb,
		Journal: jnl,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := orch.Recover(ctx); err != nil {
		return fmt.Errorf("recover state: %w", err)
	}

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("metrics listening", slog.String("addr", cfg.Metrics.Listen))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		defer srv.Close()
	}

	return orch.Run(ctx)
}
