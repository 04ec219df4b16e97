package schema

import (
	"encoding/json"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestValidateMissingRequiredProperty(t *testing.T) {
	status, violations := NewValidator().Validate(
		map[string]interface{}{"foo": "bar"},
		map[string]interface{}{"type": "object", "required": []interface{}{"baz"}},
	)

	require.Equal(t, StatusFail, status)
	require.Len(t, violations, 1)
	assert.Empty(t, violations[0].Location)
	assert.Contains(t, violations[0].Message, "baz")
	assert.Contains(t, violations[0].String(), ": ")
}

func TestValidatePass(t *testing.T) {
	status, violations := NewValidator().Validate(
		decode(t, `{"id": 1, "name": "jane"}`),
		decode(t, `{"type": "object", "required": ["id"], "properties": {"id": {"type": "integer"}, "name": {"type": "string"}}}`),
	)

	assert.Equal(t, StatusPass, status)
	assert.Empty(t, violations)
}

func TestValidateEmptySchemaAcceptsEverything(t *testing.T) {
	v := NewValidator()
	for _, payload := range []interface{}{
		nil,
		"text",
		json.Number("12"),
		[]interface{}{1, "a"},
		map[string]interface{}{"anything": map[string]interface{}{"goes": true}},
	} {
		for _, schema := range []interface{}{nil, map[string]interface{}{}} {
			status, violations := v.Validate(payload, schema)
			assert.Equal(t, StatusPass, status)
			assert.Empty(t, violations)
		}
	}
}

func TestValidateCollectsAllViolationsInLocationOrder(t *testing.T) {
	schema := decode(t, `{
		"type": "object",
		"required": ["id"],
		"properties": {
			"name": {"type": "string"},
			"items": {
				"type": "array",
				"items": {"type": "object", "properties": {"qty": {"type": "integer", "minimum": 1}}}
			},
			"amount": {"type": "number"}
		}
	}`)
	payload := decode(t, `{
		"name": 7,
		"amount": "ten",
		"items": [{"qty": 1}, {"qty": 0}, {"qty": 1}, {"qty": 1}, {"qty": 1}, {"qty": 1}, {"qty": 1}, {"qty": 1}, {"qty": 1}, {"qty": 1}, {"qty": "x"}]
	}`)

	status, violations := NewValidator().Validate(payload, schema)
	require.Equal(t, StatusFail, status)

	var paths []string
	for _, v := range violations {
		paths = append(paths, v.Path())
	}
	assert.Equal(t, []string{"", "amount", "items/1/qty", "items/10/qty", "name"}, paths)
}

func TestValidateIsDeterministic(t *testing.T) {
	schema := decode(t, `{
		"type": "object",
		"required": ["a", "b", "c"],
		"additionalProperties": false,
		"properties": {"x": {"type": "string"}, "y": {"type": "string"}, "z": {"type": "string"}}
	}`)
	payload := decode(t, `{"x": 1, "y": 2, "z": 3, "extra": true}`)

	v := NewValidator()
	_, first := v.Validate(payload, schema)
	require.NotEmpty(t, first)

	for i := 0; i < 20; i++ {
		_, again := NewValidator().Validate(payload, schema)
		assert.Equal(t, Strings(first), Strings(again))
	}
}

func TestValidateInvalidSchema(t *testing.T) {
	status, violations := NewValidator().Validate(
		map[string]interface{}{"foo": "bar"},
		map[string]interface{}{"type": 12},
	)

	assert.Equal(t, StatusFail, status)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "invalid schema")
}

func TestValidateFormatIsAnnotationOnly(t *testing.T) {
	v := NewValidator()
	for _, schema := range []string{
		`{"properties": {"d": {"type": "string", "format": "date-time"}}}`,
		`{"properties": {"d": {"anyOf": [{"format": "date"}, {"format": "uri"}]}}}`,
		`{"properties": {"d": {"format": "email"}}, "required": ["d"]}`,
	} {
		status, violations := v.Validate(decode(t, `{"d": "not-a-date"}`), decode(t, schema))
		assert.Equal(t, StatusPass, status, schema)
		assert.Empty(t, violations, schema)
	}

	status, violations := v.Validate(decode(t, `{"d": 1}`), decode(t, `{"properties": {"d": {"type": "string", "format": "date-time"}}}`))
	assert.Equal(t, StatusFail, status)
	require.Len(t, violations, 1)
	assert.Equal(t, []string{"d"}, violations[0].Location)
}

func TestValidateUnsupportedPatternIsInvalidSchema(t *testing.T) {
	status, violations := NewValidator().Validate(
		decode(t, `{"name": "jane"}`),
		decode(t, `{"properties": {"name": {"type": "string", "pattern": "^(?!\\s).*$"}}}`),
	)

	assert.Equal(t, StatusFail, status)
	require.Len(t, violations, 1)
	assert.Empty(t, violations[0].Location)
	assert.Contains(t, violations[0].Message, "invalid schema")
}

func TestValidateConcurrentUse(t *testing.T) {
	v := NewValidator()
	schema := decode(t, `{"type": "object", "required": ["id"]}`)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := map[string]interface{}{}
			if i%2 == 0 {
				payload["id"] = json.Number(strconv.Itoa(i))
			}
			status, _ := v.Validate(payload, schema)
			if i%2 == 0 {
				assert.Equal(t, StatusPass, status)
			} else {
				assert.Equal(t, StatusFail, status)
			}
		}(i)
	}
	wg.Wait()
}

func TestViolationString(t *testing.T) {
	assert.Equal(t, "items/0/sku: expected string", Violation{
		Location: []string{"items", "0", "sku"},
		Message:  "expected string",
	}.String())
	assert.Equal(t, ": missing properties: 'baz'", Violation{Message: "missing properties: 'baz'"}.String())
}
