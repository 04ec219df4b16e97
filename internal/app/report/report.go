package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/form3tech-oss/jwt-contract-validator/internal/app/schema"
	"github.com/form3tech-oss/jwt-contract-validator/internal/app/validation"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var columns = []string{"test_name", "id", "request_uri", "request_method", "status", "src", "msg", "http", "error"}

func WriteJSON(w io.Writer, results []validation.Result) error {
	if results == nil {
		results = []validation.Result{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errors.Wrap(err, "unable to encode results")
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteCSV writes one row per result. Pass-through fields are written as
// their JSON text, except strings which are unquoted.
func WriteCSV(w io.Writer, results []validation.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return err
	}

	for _, r := range results {
		errorsCell := ""
		if r.Failed() {
			data, err := json.Marshal(r.Errors)
			if err != nil {
				return errors.Wrap(err, "unable to encode errors")
			}
			errorsCell = string(data)
		}

		row := []string{
			r.TestName,
			cell(r.ID),
			r.RequestURI,
			r.RequestMethod,
			string(r.Status),
			cell(r.Src),
			cell(r.Msg),
			cell(r.HTTP),
			errorsCell,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func cell(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func WriteFile(path, format string, results []validation.Result) error {
	var write func(io.Writer, []validation.Result) error
	switch strings.ToLower(format) {
	case FormatJSON:
		write = WriteJSON
	case FormatCSV, "":
		write = WriteCSV
	default:
		return errors.Errorf("unsupported output format %q", format)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "unable to create output file")
	}

	err = write(f, results)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

// WriteSummary renders PASS/FAIL counts per test, in order of first appearance.
func WriteSummary(w io.Writer, results []validation.Result) error {
	type counts struct{ pass, fail int }

	var order []string
	perTest := map[string]*counts{}
	total := counts{}
	for _, r := range results {
		c, ok := perTest[r.TestName]
		if !ok {
			c = &counts{}
			perTest[r.TestName] = c
			order = append(order, r.TestName)
		}
		if r.Status == schema.StatusPass {
			c.pass++
			total.pass++
		} else {
			c.fail++
			total.fail++
		}
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Test", "Pass", "Fail", "Total"})
	for _, name := range order {
		c := perTest[name]
		t.AppendRow(table.Row{name, c.pass, c.fail, c.pass + c.fail})
	}
	t.AppendFooter(table.Row{"Total", total.pass, total.fail, total.pass + total.fail})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}
