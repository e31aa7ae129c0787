package reporting

import (
	"fmt"
	"strings"
	"time"
)

var markdownCell = strings.NewReplacer("|", `\|`, "\n", " ")

// RenderMarkdown renders r as a Markdown document.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", r.Title))
	sb.WriteString(fmt.Sprintf("Chat: %d | Generated: %s | SOL: $%.2f\n\n",
		r.ChatID, r.GeneratedAt.Format(time.RFC3339), r.NativeUSD))

	writeRow(&sb, r.Header)
	sb.WriteString("|")
	for range r.Header {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for _, row := range r.Rows {
		writeRow(&sb, row)
	}

	sb.WriteString("\n")
	sb.WriteString(r.Summary)
	sb.WriteString("\n")
	return sb.String()
}

func writeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("|")
	for _, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(markdownCell.Replace(c))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}
