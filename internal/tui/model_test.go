package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"imgcvt/internal/converter"
)

func TestModelAccumulatesUpdates(t *testing.T) {
	updates := make(chan converter.ProgressUpdate)
	m := NewModel("webp", updates)

	for _, u := range []converter.ProgressUpdate{
		{TotalDelta: 3},
		{ConvertedDelta: 1, BytesDelta: 2048},
		{FailedDelta: 1},
	} {
		next, _ := m.Update(updateMsg(u))
		m = next.(Model)
	}

	view := m.View()
	for _, want := range []string{"imgcvt → webp", "Files: 2/3", "failed:1", "2.0 KiB"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	next, cmd := m.Update(doneMsg{})
	if cmd == nil || next.(Model).View() != "" {
		t.Error("done should quit and clear the view")
	}
}

func TestModelQuitsOnInterruptKeys(t *testing.T) {
	keys := []tea.KeyMsg{
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyRunes, Runes: []rune("q")},
	}
	for _, key := range keys {
		m := NewModel("png", make(chan converter.ProgressUpdate))
		next, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s: expected a command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: command did not quit", key)
		}
		if next.(Model).View() != "" {
			t.Errorf("%s: view not cleared", key)
		}
	}

	m := NewModel("png", make(chan converter.ProgressUpdate))
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); cmd != nil {
		t.Error("other keys should be ignored")
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(4, 0.5); got != "[==  ]" {
		t.Errorf("got %q", got)
	}
	if got := renderBar(4, 2); got != "[====]" {
		t.Errorf("got %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestRenderSummaryRows(t *testing.T) {
	out := RenderSummary(SummaryRows(converter.Summary{Total: 2, Converted: 1, Failed: 1, BytesWritten: 10}))
	for _, want := range []string{"Files in batch", "Converted", "Failed", "10 B"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
