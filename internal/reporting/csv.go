package reporting

import (
	"encoding/csv"
	"strings"
)

// RenderCSV renders the rows of r as CSV with a header line.
func RenderCSV(r *Report) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(r.Header); err != nil {
		return "", err
	}
	if err := w.WriteAll(r.Rows); err != nil {
		return "", err
	}
	return sb.String(), nil
}
