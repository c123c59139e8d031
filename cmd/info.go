package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"imgcvt/internal/report"
	"imgcvt/internal/tui"
	"imgcvt/pkg/imgutil"
)

var infoJSON bool

type infoEntry struct {
	Path string `json:"path"`
	imgutil.Metadata
	Error string `json:"error,omitempty"`
}

var infoCmd = &cobra.Command{
	Use:   "info <path>...",
	Short: "Show size, MIME type and EXIF details of files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		entries := make([]infoEntry, 0, len(args))
		failures := 0
		for _, path := range args {
			md, err := imgutil.Probe(path)
			entry := infoEntry{Path: path, Metadata: md}
			if err != nil {
				entry.Error = err.Error()
				failures++
			}
			entries = append(entries, entry)
		}

		if infoJSON {
			if err := report.WriteJSON(out, entries); err != nil {
				return err
			}
		} else {
			for i, e := range entries {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s\n", infoFileStyle.Render(e.Path))
				if e.Error != "" {
					fmt.Fprintf(out, "  %s %s\n", infoBulletStyle.Render("-"), infoErrorStyle.Render(e.Error))
					continue
				}
				mime := e.MIMEType
				if mime == "" {
					mime = "unknown"
				}
				printField(out, "size", tui.FormatBytes(e.Size))
				printField(out, "mime", mime)
				printField(out, "exif tags", fmt.Sprintf("%d", e.Tags))
				if e.Camera != "" {
					printField(out, "camera", e.Camera)
				}
				if e.Captured != "" {
					printField(out, "captured", e.Captured)
				}
				if e.HasGPS {
					printField(out, "location", "GPS coordinates present")
				}
			}
		}

		if failures == len(args) {
			return fmt.Errorf("could not read any of the %d paths", failures)
		}
		return nil
	},
}

func printField(out io.Writer, label, value string) {
	fmt.Fprintf(out, "  %s %s %s\n",
		infoBulletStyle.Render("-"),
		infoLabelStyle.Render(label+":"),
		infoValueStyle.Render(value),
	)
}

var (
	infoFileStyle   = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	infoLabelStyle  = lipgloss.NewStyle().Foreground(tui.ColorAccentAlt)
	infoValueStyle  = lipgloss.NewStyle().Foreground(tui.ColorInk)
	infoBulletStyle = lipgloss.NewStyle().Foreground(tui.ColorDim)
	infoErrorStyle  = lipgloss.NewStyle().Foreground(tui.ColorError)
)

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "print metadata as JSON")
	rootCmd.AddCommand(infoCmd)
}
