// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"

	"fjacquet/fatura-extractor/internal/config"
	"fjacquet/fatura-extractor/internal/container"
	"fjacquet/fatura-extractor/internal/logging"

	"github.com/spf13/cobra"
)

// Version is reported by --version and the health endpoint.
const Version = "0.1.0"

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// AppContainer is built by the persistent pre-run and shared by all commands.
	AppContainer *container.Container

	configFile string
	logLevel   string

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "fatura-extractor",
		Short: "Extract structured data from Brazilian credit-card invoices.",
		Long: `fatura-extractor reads credit-card invoices (faturas) issued by Brazilian banks,
detects the issuer, and extracts the cardholder, dates, declared total and a
categorized list of transactions. Results can be exported as JSON, Excel or CSV,
processed in batches, or served over HTTP.`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			if err := AppContainer.Close(); err != nil {
				Log.WithError(err).Warn("Failed to release resources")
			}
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: config.yaml in $HOME/.fatura-extractor, .fatura-extractor or .)")
	Cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (trace, debug, info, warn, error)")
}

func setup(cmd *cobra.Command, args []string) error {
	envFile, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	Log = config.ConfigureLoggingFromConfig(cfg)
	if envFile != "" {
		Log.Debug("Loaded environment file", logging.F(logging.FieldFile, envFile))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	AppContainer, err = container.NewContainer(ctx, cfg, container.WithLogger(Log))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	return nil
}

// GetContainer returns the container built for the running command.
func GetContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return AppContainer, nil
}
