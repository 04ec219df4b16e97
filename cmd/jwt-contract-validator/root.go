package main

import (
	"github.com/form3tech-oss/jwt-contract-validator/internal/app/configuration"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "jwt-contract-validator",
	Short: "Validate recorded JWT payloads against an OpenAPI contract",
	Long: `jwt-contract-validator checks the JWT bodies captured in recorded test logs
against the schemas an OpenAPI contract declares for the matching operation.

Defaults for every flag are read from the environment (CONTRACT_URL,
LOGS_DIR, OUTPUT_FILE, OUTPUT_FORMAT, PARALLEL, ADMIN_PORT, LOG_LEVEL, ...).`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		return configuration.ConfigureLogging(config)
	},
}

// config is read from the environment before flags are registered, so the
// environment provides flag defaults and flags override it.
var config, configErr = configuration.NewFromEnv()

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level (debug, info, warn, error)")
}
