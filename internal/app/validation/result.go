package validation

import (
	"encoding/json"

	"github.com/form3tech-oss/jwt-contract-validator/internal/app/schema"
	"github.com/tidwall/sjson"
)

type Direction string

const (
	DirectionRequest  Direction = "request"
	DirectionResponse Direction = "response"
)

var null = json.RawMessage("null")

// Result is the outcome of validating one body of one record.
type Result struct {
	TestName      string
	ID            json.RawMessage
	RequestURI    string
	RequestMethod string
	Status        schema.Status
	Src           json.RawMessage
	Msg           json.RawMessage
	HTTP          json.RawMessage
	// Errors is only set for failed results, one "location: message" per violation.
	Errors []string

	Direction Direction
}

func (r Result) Failed() bool {
	return r.Status == schema.StatusFail
}

// MarshalJSON writes the fields in a fixed order so that runs can be diffed.
func (r Result) MarshalJSON() ([]byte, error) {
	out := []byte("{}")
	var err error

	set := func(key string, value interface{}) {
		if err == nil {
			out, err = sjson.SetBytes(out, key, value)
		}
	}
	setRaw := func(key string, value json.RawMessage) {
		if len(value) == 0 {
			value = null
		}
		if err == nil {
			out, err = sjson.SetRawBytes(out, key, value)
		}
	}

	set("test_name", r.TestName)
	setRaw("id", r.ID)
	set("request_uri", r.RequestURI)
	set("request_method", r.RequestMethod)
	set("status", string(r.Status))
	setRaw("src", r.Src)
	setRaw("msg", r.Msg)
	setRaw("http", r.HTTP)
	if r.Failed() {
		set("error", r.Errors)
	}

	if err != nil {
		return nil, err
	}
	return out, nil
}
