package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/apiconsole/internal/console"
)

// outputFormat specifies how to render CLI output.
type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

// noDataMessage is printed by table output when there are no rows.
const noDataMessage = "No data available"

// parseOutputFormat parses and validates the output format flag.
func parseOutputFormat(s string) (outputFormat, error) {
	switch strings.ToLower(s) {
	case "table", "":
		return outputTable, nil
	case "json":
		return outputJSON, nil
	case "yaml":
		return outputYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (supported: table, json, yaml)", s)
	}
}

// printOutput renders data in the requested format.
// For table output, headers and rows must be provided.
// For json/yaml output, data is serialized directly.
func printOutput(w io.Writer, format outputFormat, data any, headers []string, rows [][]string) error {
	switch format {
	case outputJSON:
		return printJSON(w, data)
	case outputYAML:
		return printYAML(w, data)
	default:
		return printTable(w, headers, rows)
	}
}

// printRows renders normalised API rows. Table columns come from the first
// row; cells use the console's display rules.
func printRows(w io.Writer, format outputFormat, rows []*console.Object) error {
	if format == outputTable && len(rows) == 0 {
		_, err := fmt.Fprintln(w, noDataMessage)
		return err
	}

	columns := console.Columns(rows)
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = console.HeaderLabel(c)
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(columns))
		for j, c := range columns {
			v, _ := row.Get(c)
			cells[i][j] = console.FormatCell(v)
		}
	}

	return printOutput(w, format, rows, headers, cells)
}

// printMethods renders probe results.
func printMethods(w io.Writer, format outputFormat, results []console.MethodProbeResult) error {
	rows := make([][]string, len(results))
	for i, r := range results {
		mark := "no"
		if r.Supported {
			mark = "yes"
		}
		rows[i] = []string{r.Method, mark}
	}
	return printOutput(w, format, results, []string{"Method", "Supported"}, rows)
}

// printJSON writes pretty-printed JSON to the writer.
func printJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printYAML writes YAML to the writer.
func printYAML(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(data)
}

// printTable writes aligned columnar output to the writer. An index column
// is prepended so rows can be addressed by update and delete.
func printTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprint(tw, "#")
	for _, h := range headers {
		fmt.Fprint(tw, "\t", h)
	}
	fmt.Fprintln(tw)

	for i, row := range rows {
		fmt.Fprint(tw, i)
		for _, cell := range row {
			fmt.Fprint(tw, "\t", cell)
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}
