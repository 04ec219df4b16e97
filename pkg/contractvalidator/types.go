package contractvalidator

import "encoding/json"

// Result is one validated token body as returned by the validation API.
type Result struct {
	TestName      string          `json:"test_name"`
	ID            json.RawMessage `json:"id"`
	RequestURI    string          `json:"request_uri"`
	RequestMethod string          `json:"request_method"`
	Status        string          `json:"status"`
	Src           json.RawMessage `json:"src"`
	Msg           json.RawMessage `json:"msg"`
	HTTP          json.RawMessage `json:"http"`
	Error         []string        `json:"error,omitempty"`
}

func (r Result) Passed() bool {
	return r.Status == "PASS"
}

type apiError struct {
	ErrorMessage string `json:"error_message"`
}
