package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"imgcvt/internal/converter"
)

type SummaryRow struct {
	Label string
	Value string
}

// SummaryRows lays out the totals shown after a batch.
func SummaryRows(s converter.Summary) []SummaryRow {
	return []SummaryRow{
		{Label: "Files in batch", Value: fmt.Sprintf("%d", s.Total)},
		{Label: "Converted", Value: fmt.Sprintf("%d", s.Converted)},
		{Label: "Failed", Value: fmt.Sprintf("%d", s.Failed)},
		{Label: "Bytes written", Value: FormatBytes(s.BytesWritten)},
	}
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var (
	valueStyle = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
)
