package main

import (
	"fmt"
	"strings"

	"github.com/form3tech-oss/jwt-contract-validator/internal/app/configuration"
	"github.com/form3tech-oss/jwt-contract-validator/internal/app/interactionlog"
	"github.com/form3tech-oss/jwt-contract-validator/internal/app/report"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every recorded log in a directory",
	Long: `Validate loads the contract, validates every *.json log in the logs
directory and prints the results as JSON followed by a per-test summary.
The results are also written to the output file.

Usage:
  jwt-contract-validator validate --contract openapi.yaml --logs scenarios
  jwt-contract-validator validate --contract https://host/openapi.yaml --format json --output results.json`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.StringVar(&config.ContractURL, "contract", config.ContractURL, "URL or path of the OpenAPI contract (default: $CONTRACT_URL)")
	f.StringVar(&config.LogsDir, "logs", config.LogsDir, "Directory holding the recorded logs")
	f.StringVarP(&config.OutputFile, "output", "o", config.OutputFile, "Output file")
	f.StringVar(&config.OutputFormat, "format", config.OutputFormat, "Output file format: csv or json")
	f.IntVar(&config.Parallel, "parallel", config.Parallel, "Number of logs validated concurrently")
	f.StringVar(&config.PayloadPath, "payload-path", config.PayloadPath, "JSONPath selecting the validated part of each payload, e.g. $.data")
}

func runValidate(cmd *cobra.Command, args []string) error {
	validator, err := configuration.ConfigureValidator(cmd.Context(), config)
	if err != nil {
		return err
	}

	paths, err := interactionlog.Files(config.LogsDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		log.Warnf("no logs found in %s", config.LogsDir)
	}

	results, err := validator.ValidateFiles(cmd.Context(), paths)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.WriteJSON(out, results); err != nil {
		return errors.Wrap(err, "print results")
	}
	fmt.Fprintln(out)
	if err := report.WriteSummary(out, results); err != nil {
		return errors.Wrap(err, "print summary")
	}

	if err := report.WriteFile(config.OutputFile, config.OutputFormat, results); err != nil {
		return err
	}
	log.Infof("%s file written to %s", strings.ToUpper(config.OutputFormat), config.OutputFile)
	return nil
}
