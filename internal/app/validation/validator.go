package validation

import (
	"context"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/form3tech-oss/jwt-contract-validator/internal/app/contract"
	"github.com/form3tech-oss/jwt-contract-validator/internal/app/interactionlog"
	"github.com/form3tech-oss/jwt-contract-validator/internal/app/metrics"
	"github.com/form3tech-oss/jwt-contract-validator/internal/app/schema"
	"github.com/form3tech-oss/jwt-contract-validator/internal/app/token"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const defaultParallel = 4

type Config struct {
	// ContentType is the media type under which the contract declares token schemas.
	ContentType string
	// PayloadPath optionally selects the part of the decoded payload to validate, e.g. "$.data".
	PayloadPath string
	// Parallel bounds the number of logs validated at once by ValidateFiles.
	Parallel int
	Metrics  *metrics.Metrics
}

type Validator struct {
	table       *contract.PathTable
	schemas     *schema.Validator
	contentType string
	selector    func(context.Context, interface{}) (interface{}, error)
	parallel    int
	metrics     *metrics.Metrics
}

func New(table *contract.PathTable, config Config) (*Validator, error) {
	v := &Validator{
		table:       table,
		schemas:     schema.NewValidator(),
		contentType: config.ContentType,
		parallel:    config.Parallel,
		metrics:     config.Metrics,
	}
	if v.contentType == "" {
		v.contentType = contract.MediaTypeJWT
	}
	if v.parallel < 1 {
		v.parallel = defaultParallel
	}
	if v.metrics == nil {
		v.metrics = metrics.DefaultMetrics
	}

	if config.PayloadPath != "" {
		selector, err := jsonpath.New(config.PayloadPath)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid payload path %q", config.PayloadPath)
		}
		v.selector = selector
	}

	return v, nil
}

// requestContext is the last request seen in a log. Records without a
// request of their own, such as responses, are matched against it.
type requestContext struct {
	uri    string
	method string
}

func (c requestContext) next(record interactionlog.Record) requestContext {
	if !record.HasRequest() {
		return c
	}
	return requestContext{
		uri:    record.RequestURI,
		method: strings.ToUpper(record.RequestMethod),
	}
}

// ValidateLog validates every record of l in order. Records that cannot be
// matched to a contract schema produce no result.
func (v *Validator) ValidateLog(l *interactionlog.Log) []Result {
	var (
		current requestContext
		results []Result
	)

	for _, record := range l.Records {
		current = current.next(record)
		results = append(results, v.validateRecord(l.TestName, current, record)...)
	}

	v.metrics.LogsProcessed.Inc()
	log.WithFields(log.Fields{
		"test_name": l.TestName,
		"source":    l.Source,
		"records":   len(l.Records),
		"results":   len(results),
	}).Info("validated log")

	return results
}

func (v *Validator) validateRecord(testName string, current requestContext, record interactionlog.Record) []Result {
	v.metrics.RecordsTotal.Inc()
	entry := log.WithFields(log.Fields{
		"test_name": testName,
		"id":        string(record.ID),
	})

	if current.uri == "" {
		v.skip(entry, metrics.SkipNoContext)
		return nil
	}
	if !record.HasBody() {
		v.skip(entry, metrics.SkipNoBody)
		return nil
	}

	path := v.table.Normalize(current.uri)
	entry = entry.WithFields(log.Fields{"path": path, "method": current.method})

	operation, ok := v.table.Resolve(path, current.method)
	if !ok {
		v.skip(entry, metrics.SkipUnresolved)
		return nil
	}

	newResult := func(direction Direction, status schema.Status, violations []schema.Violation) Result {
		result := Result{
			TestName:      testName,
			ID:            record.ID,
			RequestURI:    path,
			RequestMethod: current.method,
			Status:        status,
			Src:           record.Src,
			Msg:           record.Msg,
			HTTP:          record.HTTP,
			Direction:     direction,
		}
		if status == schema.StatusFail {
			result.Errors = schema.Strings(violations)
		}
		v.metrics.ResultsTotal.WithLabelValues(string(direction), string(status)).Inc()
		return result
	}

	var results []Result
	if interactionlog.Present(record.RequestBody) {
		if status, violations, ok := v.check(entry, record.RequestBody, operation.RequestSchema); ok {
			results = append(results, newResult(DirectionRequest, status, violations))
		}
	}
	if interactionlog.Present(record.ResponseBody) {
		if status, violations, ok := v.check(entry, record.ResponseBody, operation.ResponseSchema); ok {
			results = append(results, newResult(DirectionResponse, status, violations))
		}
	}
	return results
}

// check runs decode, select and validate on one body, stopping at the first
// stage that has nothing to offer.
func (v *Validator) check(entry *log.Entry, body interface{}, schemaFor func(string) (interface{}, bool)) (schema.Status, []schema.Violation, bool) {
	encoded, ok := body.(string)
	if !ok {
		v.skip(entry, metrics.SkipUndecodable)
		return "", nil, false
	}

	payload, ok := token.Decode(encoded)
	if !ok {
		v.skip(entry, metrics.SkipUndecodable)
		return "", nil, false
	}
	if !interactionlog.Present(payload) {
		v.skip(entry, metrics.SkipEmpty)
		return "", nil, false
	}

	payload, ok = v.selectPayload(payload)
	if !ok {
		v.skip(entry, metrics.SkipUndecodable)
		return "", nil, false
	}

	contractSchema, ok := schemaFor(v.contentType)
	if !ok {
		v.skip(entry, metrics.SkipNoSchema)
		return "", nil, false
	}

	status, violations := v.schemas.Validate(payload, contractSchema)
	return status, violations, true
}

func (v *Validator) selectPayload(payload interface{}) (interface{}, bool) {
	if v.selector == nil {
		return payload, true
	}
	selected, err := v.selector(context.Background(), payload)
	if err != nil || selected == nil {
		return nil, false
	}
	return selected, true
}

func (v *Validator) skip(entry *log.Entry, reason string) {
	v.metrics.RecordsSkipped.WithLabelValues(reason).Inc()
	entry.WithField("reason", reason).Debug("skipping record")
}
