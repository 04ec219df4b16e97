package configuration

import (
	"context"
	"time"

	"github.com/form3tech-oss/jwt-contract-validator/internal/app/contract"
	"github.com/form3tech-oss/jwt-contract-validator/internal/app/validation"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	ContractURL   string        `env:"CONTRACT_URL"`                                 // URL or file path of the OpenAPI contract
	LogsDir       string        `env:"LOGS_DIR,default=scenarios"`                   // Directory holding the recorded test logs
	OutputFile    string        `env:"OUTPUT_FILE,default=validation_results.csv"`   // Where validate writes its results
	OutputFormat  string        `env:"OUTPUT_FORMAT,default=csv"`                    // csv or json
	ContentType   string        `env:"ENCODED_CONTENT_TYPE,default=application/jwt"` // Media type of token bodies in the contract
	PayloadPath   string        `env:"PAYLOAD_PATH"`                                 // Optional JSONPath applied to decoded payloads, e.g. $.data
	Parallel      int           `env:"PARALLEL,default=4"`                           // Number of logs validated concurrently
	AdminPort     int           `env:"ADMIN_PORT,default=8080"`                      // Port of the validation API
	FetchAttempts int           `env:"FETCH_ATTEMPTS,default=3"`                     // Attempts when fetching the contract over HTTP
	FetchDelay    time.Duration `env:"FETCH_DELAY,default=500ms"`                    // Delay between fetch attempts
	LogLevel      string        `env:"LOG_LEVEL,default=info"`
}

func NewFromEnv() (Config, error) {
	return newFromLookuper(envconfig.OsLookuper())
}

func newFromLookuper(lookuper envconfig.Lookuper) (Config, error) {
	ctx := context.Background()

	var config Config
	err := envconfig.ProcessWith(ctx, &config, lookuper)
	if err != nil {
		return config, errors.Wrap(err, "process env config")
	}
	return config, nil
}

func ConfigureLogging(config Config) error {
	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	log.SetLevel(level)
	return nil
}

// ConfigureValidator loads the contract and builds a validator for it.
func ConfigureValidator(ctx context.Context, config Config) (*validation.Validator, error) {
	if config.ContractURL == "" {
		return nil, errors.New("no contract configured, set CONTRACT_URL or --contract")
	}

	table, err := contract.Load(ctx, config.ContractURL, contract.FetchOptions{
		Attempts: uint(config.FetchAttempts),
		Delay:    config.FetchDelay,
	})
	if err != nil {
		return nil, err
	}

	return validation.New(table, validation.Config{
		ContentType: config.ContentType,
		PayloadPath: config.PayloadPath,
		Parallel:    config.Parallel,
	})
}
