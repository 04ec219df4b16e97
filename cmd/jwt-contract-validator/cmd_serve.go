package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/form3tech-oss/jwt-contract-validator/internal/app/configuration"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the validation API",
	Long: `Serve loads the contract once and answers POST /validations with the
results for the log in the request body. GET /ready reports readiness and
GET /metrics exposes Prometheus metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&config.ContractURL, "contract", config.ContractURL, "URL or path of the OpenAPI contract (default: $CONTRACT_URL)")
	f.IntVar(&config.AdminPort, "port", config.AdminPort, "Port of the validation API")
	f.StringVar(&config.PayloadPath, "payload-path", config.PayloadPath, "JSONPath selecting the validated part of each payload, e.g. $.data")
}

func runServe(cmd *cobra.Command, args []string) error {
	validator, err := configuration.ConfigureValidator(cmd.Context(), config)
	if err != nil {
		return err
	}

	server := configuration.ServeAPI(config.AdminPort, validator)
	log.Infof("validation API listening on :%d", config.AdminPort)

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	return server.Close()
}
