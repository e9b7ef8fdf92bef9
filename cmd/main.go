package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"adventureworks/config"
	"adventureworks/logger"
	"adventureworks/pipeline"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	cfg       *config.Config

	RootCmd = &cobra.Command{
		Use:           "adventureworks",
		Short:         "Load the Adventure Works dataset into PostgreSQL and analyze sales",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				path = config.GetDefaultConfigPath()
			}
			var err error
			if cfg, err = config.LoadConfig(path); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = logFormat
			}
			if err := logger.SetLogLevel(cfg.Log.Level, cfg.Log.Format); err != nil {
				return err
			}
			return cfg.Validate()
		},
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml if present, then AW_* environment)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logging level debug|info|warn")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "logging format [text|json]")

	RootCmd.AddCommand(
		stepCmd("schema", "Create the Adventure Works tables", (*pipeline.Runner).Schema),
		stepCmd("load", "Bulk-load the CSV files into the tables", (*pipeline.Runner).Load),
		stepCmd("report", "Run the analytical queries and print the results", (*pipeline.Runner).Report),
		stepCmd("chart", "Render the profit charts as SVG files", (*pipeline.Runner).Charts),
		stepCmd("run", "Create schema, load data, report and render charts", (*pipeline.Runner).Run),
	)
}

func stepCmd(use, short string, step func(*pipeline.Runner, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := log.With().Str("run_id", uuid.NewString()).Str("step", use).Logger().WithContext(cmd.Context())
			return withRunner(ctx, func(r *pipeline.Runner) error {
				return step(r, ctx)
			})
		},
	}
}

// withRunner открывает соединение, выполняет fn и закрывает соединение на любом пути
func withRunner(ctx context.Context, fn func(*pipeline.Runner) error) error {
	db, err := sql.Open("postgres", cfg.Database.GetConnectionString())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	// Один запрос за раз в одном соединении
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Ctx(ctx).Debug().
		Str("host", cfg.Database.Host).
		Str("dbname", cfg.Database.DBName).
		Str("schema", cfg.Database.Schema).
		Msg("connected")

	r, err := pipeline.New(cfg, db, os.Stdout)
	if err != nil {
		return err
	}
	return fn(r)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("")
		stop()
		os.Exit(1)
	}
}
