package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ekaya-inc/ekaya-db2/pkg/models"
)

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// renderResults prints one table per statement result, followed by its message.
func renderResults(w io.Writer, results []*models.QueryResult) {
	for i, r := range results {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "-- %s\n", r.Query)

		if len(r.Cols) > 0 {
			t := newTable(w)
			header := make(table.Row, len(r.Cols))
			for j, col := range r.Cols {
				header[j] = col
			}
			t.AppendHeader(header)

			for _, row := range r.Results {
				values := make(table.Row, len(r.Cols))
				for j, col := range r.Cols {
					v, _ := row.Get(col)
					values[j] = formatValue(v)
				}
				t.AppendRow(values)
			}
			t.Render()
		}

		for _, m := range r.Messages {
			_, _ = fmt.Fprintln(w, m.Message)
		}
	}
}

// renderNodes prints explorer nodes as a table.
func renderNodes(w io.Writer, nodes []models.Node) {
	if len(nodes) == 0 {
		_, _ = fmt.Fprintln(w, "(no items)")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Type", "Label", "Schema", "Detail"})
	for _, n := range nodes {
		schema, detail := nodeDetail(n)
		t.AppendRow(table.Row{n.Kind(), n.NodeLabel(), schema, detail})
	}
	t.AppendFooter(table.Row{"", countLabel(len(nodes), "item"), "", ""})
	t.Render()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
