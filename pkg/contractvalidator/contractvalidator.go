package contractvalidator

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
)

type ContractValidator struct {
	client http.Client
	url    string
}

func New(url string) *ContractValidator {
	return &ContractValidator{
		client: http.Client{
			Timeout: 30 * time.Second,
		},
		url: strings.TrimSuffix(url, "/"),
	}
}

func (v *ContractValidator) IsReady() error {
	res, err := v.client.Get(v.url + "/ready")
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return errors.Errorf("validator not ready: %d", res.StatusCode)
	}
	return nil
}

// WaitUntilReady polls IsReady every delay until it succeeds or timeout elapses.
func (v *ContractValidator) WaitUntilReady(delay, timeout time.Duration) error {
	start := time.Now()
	return retry.Do(v.IsReady,
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.Attempts(0),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return err != nil && time.Since(start) <= timeout
		}),
	)
}

// Validate sends a recorded log document and returns its results. source
// names the log in server-side logging and may be empty.
func (v *ContractValidator) Validate(document []byte, source string) ([]Result, error) {
	endpoint := v.url + "/validations"
	if source != "" {
		endpoint += "?" + url.Values{"source": []string{source}}.Encode()
	}

	res, err := v.client.Post(endpoint, "application/json", bytes.NewReader(document))
	if err != nil {
		return nil, errors.Wrap(err, "failed to send log")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	if res.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorMessage != "" {
			return nil, errors.New(apiErr.ErrorMessage)
		}
		return nil, errors.Errorf("validation failed with status %d", res.StatusCode)
	}

	var results []Result
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, errors.Wrap(err, "failed to decode results")
	}
	return results, nil
}
