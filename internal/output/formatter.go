// Package output renders command results as text tables, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"
)

type Format string

const (
	// FormatText leaves rendering to the command.
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --output value. Empty means text.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case "":
		return FormatText, nil
	case FormatText, FormatTable, FormatJSON, FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("invalid output format %q (want text|table|json|yaml)", s)
	}
}

// Table is data that can be laid out as rows.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Tabular is implemented by results with a table form.
type Tabular interface {
	Table() Table
}

// Write renders data in a structured format. FormatText is the caller's job.
func Write(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case FormatYAML:
		raw, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
		if err != nil {
			return err
		}
		_, err = w.Write(raw)
		return err
	case FormatTable:
		tabular, ok := data.(Tabular)
		if !ok {
			return fmt.Errorf("%T has no table form", data)
		}
		return writeTable(w, tabular.Table())
	default:
		return fmt.Errorf("format %q is rendered by the command", format)
	}
}

func writeTable(w io.Writer, data Table) error {
	table := tablewriter.NewTable(w)
	if len(data.Headers) > 0 {
		headers := make([]any, len(data.Headers))
		for i, h := range data.Headers {
			headers[i] = h
		}
		table.Header(headers...)
	}
	for _, row := range data.Rows {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}
	return table.Render()
}
