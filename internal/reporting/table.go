package reporting

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// RenderTable writes r as a terminal table.
func RenderTable(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "%s | chat %d | %s | SOL $%.2f\n",
		r.Title, r.ChatID, r.GeneratedAt.Format(time.RFC3339), r.NativeUSD)

	table := tablewriter.NewWriter(w)
	table.Header(toAny(r.Header)...)
	for _, row := range r.Rows {
		if err := table.Append(toAny(row)...); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	_, err := fmt.Fprintln(w, r.Summary)
	return err
}

func toAny(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
