// Package token extracts the payload of compact, JWT shaped bodies.
// Signatures are never verified.
package token

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode returns the JSON value carried by the middle segment of s.
// Bodies that are not tokens are expected, so every failure is reported as
// ok == false rather than as an error.
func Decode(s string) (payload interface{}, ok bool) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return nil, false
	}

	data, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, false
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return nil, false
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, false
	}

	return payload, payload != nil
}
