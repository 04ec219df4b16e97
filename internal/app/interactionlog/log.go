package interactionlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const logFileExtension = ".json"

// Log is one recorded test run.
type Log struct {
	Source   string
	TestName string
	Records  []Record
}

// Record is one logged event. Bodies hold whatever JSON value was captured;
// only string bodies can carry a token. ID, Src, Msg and HTTP are passed
// through untouched.
type Record struct {
	RequestURI    string
	RequestMethod string
	RequestBody   interface{}
	ResponseBody  interface{}

	ID   json.RawMessage
	Src  json.RawMessage
	Msg  json.RawMessage
	HTTP json.RawMessage
}

// HasRequest reports whether the record starts a new request context.
func (r Record) HasRequest() bool {
	return r.RequestURI != "" && r.RequestMethod != ""
}

func (r Record) HasBody() bool {
	return Present(r.RequestBody) || Present(r.ResponseBody)
}

// Present treats empty strings, empty collections, zero, false and null as absent.
func Present(body interface{}) bool {
	switch b := body.(type) {
	case nil:
		return false
	case string:
		return b != ""
	case bool:
		return b
	case float64:
		return b != 0
	case json.Number:
		f, err := b.Float64()
		return err != nil || f != 0
	case map[string]interface{}:
		return len(b) > 0
	case []interface{}:
		return len(b) > 0
	}
	return true
}

func Load(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read log")
	}

	l, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "log %s", path)
	}
	l.Source = filepath.Base(path)
	return l, nil
}

func Parse(data []byte) (*Log, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("unable to parse log, invalid JSON")
	}

	document := gjson.ParseBytes(data)
	if !document.IsObject() {
		return nil, errors.New("unable to parse log, document is not an object")
	}

	l := &Log{
		TestName: document.Get("testInfo.testName").String(),
	}

	results := document.Get("results")
	if !results.Exists() || results.Type == gjson.Null {
		return l, nil
	}
	if !results.IsArray() {
		return nil, errors.New("unable to parse log, results is not an array")
	}

	var parseErr error
	index := 0
	results.ForEach(func(_, value gjson.Result) bool {
		record, err := parseRecord(value)
		if err != nil {
			parseErr = errors.Wrapf(err, "unable to parse result %d", index)
			return false
		}
		l.Records = append(l.Records, record)
		index++
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return l, nil
}

func parseRecord(value gjson.Result) (Record, error) {
	if !value.IsObject() {
		return Record{}, errors.New("result is not an object")
	}

	uri, err := stringField(value, "request_uri")
	if err != nil {
		return Record{}, err
	}
	method, err := stringField(value, "request_method")
	if err != nil {
		return Record{}, err
	}

	return Record{
		RequestURI:    uri,
		RequestMethod: method,
		RequestBody:   value.Get("request_body").Value(),
		ResponseBody:  value.Get("response_body").Value(),
		ID:            raw(value.Get("_id")),
		Src:           raw(value.Get("src")),
		Msg:           raw(value.Get("msg")),
		HTTP:          raw(value.Get("http")),
	}, nil
}

func stringField(value gjson.Result, name string) (string, error) {
	field := value.Get(name)
	switch field.Type {
	case gjson.Null:
		return "", nil
	case gjson.String:
		return field.String(), nil
	}
	return "", errors.Errorf("%s is not a string", name)
}

func raw(value gjson.Result) json.RawMessage {
	if !value.Exists() {
		return nil
	}
	return json.RawMessage(value.Raw)
}

// Files lists the log files directly inside dir, sorted by name.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list logs")
	}

	var files []string
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), logFileExtension) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}
