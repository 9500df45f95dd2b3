package table

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

type Row struct {
	Columns []any
}

type Table struct {
	Header []string
	Rows   []Row
}

func (T *Table) Append(columns ...any) {
	T.Rows = append(T.Rows, Row{Columns: columns})
}

// Write renders the table as aligned columns. Rows shorter than the header are padded.
func (T *Table) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, strings.Join(T.Header, "\t")); err != nil {
		return err
	}

	cells := make([]string, len(T.Header))
	for _, row := range T.Rows {
		for i := range cells {
			cells[i] = ""
			if i < len(row.Columns) {
				cells[i] = fmt.Sprintf("%v", row.Columns[i])
			}
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}

	return tw.Flush()
}
