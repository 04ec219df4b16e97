package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/form3tech-oss/jwt-contract-validator/internal/app/schema"
	"github.com/form3tech-oss/jwt-contract-validator/internal/app/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleResults = []validation.Result{
	{
		TestName:      "create order",
		ID:            json.RawMessage(`"1"`),
		RequestURI:    "/users/{id}/orders",
		RequestMethod: "POST",
		Status:        schema.StatusFail,
		Src:           json.RawMessage(`"client"`),
		HTTP:          json.RawMessage(`{"status":201,"path":"/a,b"}`),
		Errors:        []string{": missing properties: 'items'", "name: expected string"},
	},
	{
		TestName:      "create order",
		ID:            json.RawMessage(`2`),
		RequestURI:    "/users/{id}/orders",
		RequestMethod: "POST",
		Status:        schema.StatusPass,
	},
	{
		TestName:      "get user",
		ID:            json.RawMessage(`"3"`),
		RequestURI:    "/users/{id}",
		RequestMethod: "GET",
		Status:        schema.StatusPass,
		Msg:           json.RawMessage(`null`),
	},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResults))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, columns, rows[0])
	assert.Equal(t, []string{
		"create order", "1", "/users/{id}/orders", "POST", "FAIL", "client", "",
		`{"status":201,"path":"/a,b"}`,
		`[": missing properties: 'items'","name: expected string"]`,
	}, rows[1])
	assert.Equal(t, []string{"create order", "2", "/users/{id}/orders", "POST", "PASS", "", "", "", ""}, rows[2])
	assert.Equal(t, "", rows[3][6])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResults[:2]))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "FAIL", decoded[0]["status"])
	assert.Len(t, decoded[0]["error"], 2)
	_, hasError := decoded[1]["error"]
	assert.False(t, hasError)

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "results.csv")
	require.NoError(t, WriteFile(csvPath, FormatCSV, sampleResults))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "test_name,id,request_uri")

	jsonPath := filepath.Join(dir, "results.json")
	require.NoError(t, WriteFile(jsonPath, FormatJSON, sampleResults))
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	require.Error(t, WriteFile(filepath.Join(dir, "results.xml"), "xml", sampleResults))
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, sampleResults))

	out := buf.String()
	assert.Contains(t, out, "create order")
	assert.Contains(t, out, "get user")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("create order")), bytes.Index(buf.Bytes(), []byte("get user")))
}
