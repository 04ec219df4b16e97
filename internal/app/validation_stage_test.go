package app

import (
	"context"
	"encoding/base64"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-contract-validator/internal/app/configuration"
	"github.com/form3tech-oss/jwt-contract-validator/pkg/contractvalidator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"
)

const usersContract = `
openapi: 3.0.0
paths:
  /users:
    post:
      requestBody:
        content:
          application/jwt:
            schema:
              $ref: '#/components/schemas/NewUser'
      responses:
        "201":
          content:
            application/jwt:
              schema:
                $ref: '#/components/schemas/User'
  /users/{id}:
    get:
      responses:
        "200":
          content:
            application/jwt:
              schema:
                $ref: '#/components/schemas/User'
components:
  schemas:
    NewUser:
      type: object
      required: [name]
      properties:
        name:
          type: string
    User:
      type: object
      required: [id, name]
      properties:
        id:
          type: integer
        name:
          type: string
`

type ValidationStage struct {
	t         *testing.T
	assert    *assert.Assertions
	server    *httptest.Server
	validator *contractvalidator.ContractValidator
	document  string
	records   int
	results   []contractvalidator.Result
	err       error
}

func NewValidationStage(t *testing.T) (*ValidationStage, *ValidationStage, *ValidationStage) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(usersContract), 0o644))

	validator, err := configuration.ConfigureValidator(context.Background(), configuration.Config{ContractURL: path})
	require.NoError(t, err)

	server := httptest.NewServer(configuration.NewAPI(validator))
	t.Cleanup(server.Close)

	client := contractvalidator.New(server.URL)
	require.NoError(t, client.WaitUntilReady(10*time.Millisecond, time.Second))

	s := &ValidationStage{
		t:         t,
		assert:    assert.New(t),
		server:    server,
		validator: client,
		document:  `{"results":[]}`,
	}
	return s, s, s
}

func (s *ValidationStage) and() *ValidationStage {
	return s
}

func (s *ValidationStage) token(payload string) string {
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".c2ln"
}

func (s *ValidationStage) set(path string, value interface{}) {
	var err error
	s.document, err = sjson.Set(s.document, path, value)
	require.NoError(s.t, err)
}

func (s *ValidationStage) a_test_named_(name string) *ValidationStage {
	s.set("testInfo.testName", name)
	return s
}

func (s *ValidationStage) a_request_to_(method, uri string) *ValidationStage {
	s.set("results.-1", map[string]interface{}{
		"_id":            s.records + 1,
		"request_uri":    uri,
		"request_method": method,
	})
	s.records++
	return s
}

func (s *ValidationStage) with_request_payload_(payload string) *ValidationStage {
	s.set("results."+strconv.Itoa(s.records-1)+".request_body", s.token(payload))
	return s
}

func (s *ValidationStage) a_response_with_payload_(payload string) *ValidationStage {
	s.set("results.-1", map[string]interface{}{
		"_id":           s.records + 1,
		"response_body": s.token(payload),
		"http":          map[string]interface{}{"status": 201},
	})
	s.records++
	return s
}

func (s *ValidationStage) a_malformed_log() *ValidationStage {
	s.document = `{"results": {"request_uri": "/users"}}`
	return s
}

func (s *ValidationStage) the_log_is_validated() *ValidationStage {
	s.results, s.err = s.validator.Validate([]byte(s.document), "stage.json")
	return s
}

func (s *ValidationStage) validation_succeeds() *ValidationStage {
	s.assert.NoError(s.err)
	return s
}

func (s *ValidationStage) validation_is_rejected_with_(message string) *ValidationStage {
	if s.assert.Error(s.err) {
		s.assert.Contains(s.err.Error(), message)
	}
	return s
}

func (s *ValidationStage) there_are_n_results(n int) *ValidationStage {
	s.assert.Len(s.results, n)
	return s
}

func (s *ValidationStage) the_nth_result_is_(n int, status, uri, method string) *ValidationStage {
	if !s.assert.GreaterOrEqual(len(s.results), n, "number of results is less than expected") {
		return s
	}
	result := s.results[n-1]
	s.assert.Equal(status, result.Status)
	s.assert.Equal(uri, result.RequestURI)
	s.assert.Equal(method, result.RequestMethod)
	return s
}

func (s *ValidationStage) the_nth_result_has_error_(n int, message string) *ValidationStage {
	if !s.assert.GreaterOrEqual(len(s.results), n, "number of results is less than expected") {
		return s
	}
	for _, e := range s.results[n-1].Error {
		if strings.Contains(e, message) {
			return s
		}
	}
	s.assert.Failf("error not found", "%q not in %v", message, s.results[n-1].Error)
	return s
}

func (s *ValidationStage) the_nth_result_has_http_(n int, http string) *ValidationStage {
	if !s.assert.GreaterOrEqual(len(s.results), n, "number of results is less than expected") {
		return s
	}
	s.assert.JSONEq(http, string(s.results[n-1].HTTP))
	return s
}
