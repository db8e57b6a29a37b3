// Package output renders wire-form values for the terminal as JSON, YAML or a
// table.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"gopkg.in/yaml.v3"

	"ethwire/internal/jsonrpc"
)

type Format string

const (
	JSON  Format = "json"
	YAML  Format = "yaml"
	Table Format = "table"
)

var (
	red  = color.New(color.FgRed).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, YAML, Table:
		return f, nil
	case "":
		return JSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json, yaml or table)", s)
	}
}

// Render writes v, a generic JSON value, to w.
func Render(w io.Writer, f Format, v any) error {
	switch f {
	case JSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case Table:
		renderTable(w, v)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

func renderTable(w io.Writer, v any) {
	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()

	switch x := v.(type) {
	case map[string]any:
		tbl := table.New("Field", "Value").WithWriter(w).WithHeaderFormatter(headerFmt)
		for _, k := range sortedKeys(x) {
			tbl.AddRow(k, cell(x[k]))
		}
		tbl.Print()
	case []any:
		if cols, ok := objectColumns(x); ok {
			headers := make([]any, len(cols))
			for i, c := range cols {
				headers[i] = c
			}
			tbl := table.New(headers...).WithWriter(w).WithHeaderFormatter(headerFmt)
			for _, item := range x {
				obj := item.(map[string]any)
				row := make([]any, len(cols))
				for i, c := range cols {
					row[i] = cell(obj[c])
				}
				tbl.AddRow(row...)
			}
			tbl.Print()
			return
		}
		tbl := table.New("#", "Value").WithWriter(w).WithHeaderFormatter(headerFmt)
		for i, item := range x {
			tbl.AddRow(i, cell(item))
		}
		tbl.Print()
	default:
		fmt.Fprintln(w, cell(v))
	}
}

// objectColumns returns the union of keys when every item is an object.
func objectColumns(items []any) ([]string, bool) {
	if len(items) == 0 {
		return nil, false
	}
	seen := make(map[string]bool)
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		for k := range obj {
			seen[k] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols, true
}

// cell flattens a value for a table cell. Nested values become compact JSON.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return dim("null")
	case string:
		return x
	case map[string]any, []any:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(raw)
	default:
		return fmt.Sprint(x)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Error writes err in red. Node faults show their code and data.
func Error(w io.Writer, err error) {
	var fault *jsonrpc.RPCFault
	if errors.As(err, &fault) {
		fmt.Fprintf(w, "%s %s\n", red(fmt.Sprintf("rpc error %d:", fault.Code)), fault.Message)
		if len(fault.Data) > 0 {
			fmt.Fprintf(w, "  %s %s\n", bold("data:"), string(fault.Data))
		}
		return
	}
	fmt.Fprintf(w, "%s %v\n", red("error:"), err)
}
