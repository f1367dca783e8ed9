package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/churn/internal/cli"
	"github.com/Veraticus/churn/internal/common"
	"github.com/Veraticus/churn/internal/config"
	"github.com/Veraticus/churn/internal/plaid"
	"github.com/Veraticus/churn/internal/sheets"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries everything a command needs. Commands never read package state.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	newReportWriter func(ctx context.Context, cfg sheets.Config, logger *slog.Logger) (sheets.ReportWriter, error)
	newFetcher      func(cfg plaid.Config, logger *slog.Logger) (plaid.StatementFetcher, error)

	cfgFile string
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	v := viper.New()
	config.SetDefaults(v)
	return &app{
		v:      v,
		in:     in,
		out:    out,
		errOut: errOut,
		logger: slog.Default(),
		now:    time.Now,
		newReportWriter: func(ctx context.Context, cfg sheets.Config, logger *slog.Logger) (sheets.ReportWriter, error) {
			return sheets.NewWriter(ctx, cfg, logger)
		},
		newFetcher: func(cfg plaid.Config, logger *slog.Logger) (plaid.StatementFetcher, error) {
			return plaid.NewClient(cfg, logger)
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "churn",
		Short: "🏦 Bank customer churn prediction",
		Long: `churn scores bank customers for their risk of leaving.

A customer record is turned into 17 features relative to a reference
dataset, scored by a trained model, and compared with a decision threshold.`,
		PersistentPreRunE: a.initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	rootCmd.SetIn(a.in)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/churn/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("reference", "", "reference dataset CSV")
	flags.String("model", "", "scorecard model file")
	flags.Float64("threshold", 0, "churn decision threshold in (0, 1]")
	flags.String("db", "", "prediction history database")

	// Bind flags to viper
	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("reference.path", flags.Lookup("reference"))
	_ = a.v.BindPFlag("model.path", flags.Lookup("model"))
	_ = a.v.BindPFlag("prediction.threshold", flags.Lookup("threshold"))
	_ = a.v.BindPFlag("database.path", flags.Lookup("db"))

	// Add commands
	rootCmd.AddCommand(predictCmd(a))
	rootCmd.AddCommand(scoreCmd(a))
	rootCmd.AddCommand(historyCmd(a))
	rootCmd.AddCommand(referenceCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(authCmd(a))
	rootCmd.AddCommand(accountsCmd(a))
	rootCmd.AddCommand(migrateCmd(a))
	rootCmd.AddCommand(versionCmd(a))

	return rootCmd
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, cli.FormatWarning("Failed to load .env: "+err.Error()))
	}

	interrupts := cli.NewInterruptHandler(os.Stderr)
	ctx, stop := interrupts.HandleInterrupts(context.Background(), "")

	err := newRootCmd(newApp(os.Stdin, os.Stdout, os.Stderr)).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	// Set up config file
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(config.Dir())
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	// Environment variables
	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	// Read config file
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := common.SetupLogger(a.errOut, cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	a.logger = slog.Default()

	return nil
}

func versionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(a.out, "churn version %s\n", version)
			return err
		},
	}
}
