package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	log "github.com/sirupsen/logrus"
)

type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"

	resourceURL = "schema.json"
)

// Violation is a single failed schema rule.
type Violation struct {
	// Location holds the keys and indices leading from the payload root to the
	// offending value.
	Location        []string
	KeywordLocation string
	Message         string
}

func (v Violation) Path() string {
	return strings.Join(v.Location, "/")
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path(), v.Message)
}

func Strings(violations []Violation) []string {
	result := make([]string, 0, len(violations))
	for _, v := range violations {
		result = append(result, v.String())
	}
	return result
}

// annotationFormats accepts every value for every known format, leaving
// "format" as an annotation only.
var annotationFormats = func() map[string]func(interface{}) bool {
	formats := make(map[string]func(interface{}) bool, len(jsonschema.Formats))
	for name := range jsonschema.Formats {
		formats[name] = func(interface{}) bool { return true }
	}
	return formats
}()

// Validator checks payloads against draft-7 schemas. Compiled schemas are
// cached, and a Validator may be shared between goroutines.
type Validator struct {
	compiled sync.Map
}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns PASS with no violations when payload conforms to schema,
// otherwise FAIL and every violation ordered by location.
// A missing or empty schema accepts everything.
func (v *Validator) Validate(payload, schema interface{}) (Status, []Violation) {
	if isEmpty(schema) {
		return StatusPass, nil
	}

	compiled, err := v.compile(schema)
	if err != nil {
		log.Warnf("unable to compile schema: %s", err)
		return StatusFail, []Violation{{Message: "invalid schema: " + err.Error()}}
	}

	err = compiled.Validate(payload)
	if err == nil {
		return StatusPass, nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return StatusFail, []Violation{{Message: err.Error()}}
	}

	violations := leaves(validationErr, nil)
	sortViolations(violations)
	return StatusFail, violations
}

func (v *Validator) compile(schema interface{}) (*jsonschema.Schema, error) {
	// map keys are sorted by encoding/json, so equal schemas share a key
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode schema")
	}

	key := string(data)
	if cached, ok := v.compiled.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	compiler.Formats = annotationFormats
	if err := compiler.AddResource(resourceURL, bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, "unable to add schema")
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, err
	}

	actual, _ := v.compiled.LoadOrStore(key, compiled)
	return actual.(*jsonschema.Schema), nil
}

func isEmpty(schema interface{}) bool {
	switch s := schema.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(s) == 0
	}
	return false
}

func leaves(err *jsonschema.ValidationError, violations []Violation) []Violation {
	if len(err.Causes) == 0 {
		return append(violations, Violation{
			Location:        pointerTokens(err.InstanceLocation),
			KeywordLocation: err.KeywordLocation,
			Message:         err.Message,
		})
	}
	for _, cause := range err.Causes {
		violations = leaves(cause, violations)
	}
	return violations
}

func pointerTokens(pointer string) []string {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return nil
	}
	tokens := strings.Split(pointer, "/")
	for i, token := range tokens {
		tokens[i] = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
	}
	return tokens
}

func sortViolations(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if c := compareLocations(a.Location, b.Location); c != 0 {
			return c < 0
		}
		if a.KeywordLocation != b.KeywordLocation {
			return a.KeywordLocation < b.KeywordLocation
		}
		return a.Message < b.Message
	})
}

func compareLocations(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareTokens(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// array indices compare numerically, everything else as strings
func compareTokens(a, b string) int {
	if a == b {
		return 0
	}
	x, errX := strconv.Atoi(a)
	y, errY := strconv.Atoi(b)
	if errX == nil && errY == nil {
		return x - y
	}
	return strings.Compare(a, b)
}
