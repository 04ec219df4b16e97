package contract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	defaultAttempts = 3
	defaultDelay    = 500 * time.Millisecond
	defaultTimeout  = 30 * time.Second
)

type FetchOptions struct {
	Attempts uint
	Delay    time.Duration
	Client   *http.Client
}

// Load fetches the contract at location (an http(s) URL or a file path) and parses it.
func Load(ctx context.Context, location string, opts FetchOptions) (*PathTable, error) {
	data, err := Fetch(ctx, location, opts)
	if err != nil {
		return nil, err
	}

	table, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "contract %s", location)
	}

	log.Infof("loaded contract with %d paths from %s", table.Len(), location)
	return table, nil
}

func Fetch(ctx context.Context, location string, opts FetchOptions) ([]byte, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, errors.Wrap(err, "unable to read contract")
		}
		return data, nil
	}

	if opts.Attempts == 0 {
		opts.Attempts = defaultAttempts
	}
	if opts.Delay == 0 {
		opts.Delay = defaultDelay
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	var data []byte
	err := retry.Do(
		func() error {
			var err error
			data, err = get(ctx, client, location)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(opts.Attempts),
		retry.Delay(opts.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.WithField("attempt", n+1).Warnf("fetching contract from %s failed: %s", location, err)
		}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to fetch contract from %s", location)
	}
	return data, nil
}

func get(ctx context.Context, client *http.Client, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", res.StatusCode)
		if res.StatusCode < http.StatusInternalServerError {
			return nil, retry.Unrecoverable(err)
		}
		return nil, err
	}

	return io.ReadAll(res.Body)
}
