package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"imgcvt/internal/config"
	"imgcvt/internal/converter"
	"imgcvt/internal/report"
	"imgcvt/internal/tui"
)

var (
	convertFormat      string
	convertOutputDir   string
	convertPrefix      string
	convertConflict    = converter.Numbering
	convertQuality     int
	convertLossless    bool
	convertAutoOrient  bool
	convertWorkers     int
	convertConfigPath  string
	convertReportPath  string
	convertJSON        bool
	convertPlain       bool
	convertIncludeSame bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <path>...",
	Short: "Convert images to JPG, PNG, WebP or AVIF",
	Long: `Convert every image argument to the target format. Directories are searched
recursively for JPEG, PNG, WebP and AVIF files. Each input gets its own result;
failed files are reported without stopping the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		paths, err := converter.Discover(args)
		if err != nil {
			return err
		}
		paths, skipped := skipSameFormat(paths, convertFormat, convertIncludeSame)
		out := cmd.OutOrStdout()
		if !convertJSON {
			printSkipped(out, skipped, convertFormat)
		}
		if len(paths) == 0 {
			return errors.New("no images to convert")
		}

		results := runBatch(cmd.Context(), paths, cfg)

		if convertReportPath != "" {
			if err := report.Save(convertReportPath, report.New(convertFormat, cfg.Settings(), results)); err != nil {
				return err
			}
		}

		if convertJSON {
			if err := report.WriteJSON(out, results); err != nil {
				return err
			}
		} else {
			printResults(out, results)
			fmt.Fprintln(out, tui.RenderSummary(tui.SummaryRows(converter.Summarize(results))))
		}

		if s := converter.Summarize(results); s.Failed > 0 && s.Converted == 0 {
			return fmt.Errorf("all %d conversions failed", s.Failed)
		}
		return nil
	},
}

// loadConfig layers defaults, the --config file, IMGCVT_* variables and
// finally any flags the user actually set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(convertConfigPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputPath = convertOutputDir
	}
	if flags.Changed("prefix") {
		cfg.FilePrefix = convertPrefix
	}
	if flags.Changed("conflict") {
		cfg.ConflictResolution = convertConflict
	}
	if flags.Changed("quality") {
		cfg.Quality = convertQuality
	}
	if flags.Changed("lossless") {
		cfg.Lossless = convertLossless
	}
	if flags.Changed("auto-orient") {
		cfg.AutoOrient = convertAutoOrient
	}
	if flags.Changed("workers") {
		cfg.Workers = convertWorkers
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// skipSameFormat splits off sources already in the target format unless
// includeSame is set. An unknown target is left for the batch to reject.
func skipSameFormat(paths []string, target string, includeSame bool) (kept, skipped []string) {
	format, err := converter.ParseFormat(target)
	if includeSame || err != nil {
		return paths, nil
	}
	kept = paths[:0:0]
	for _, p := range paths {
		if converter.IsSameFormat(p, format) {
			slog.Info("skipping, already in target format", "source", p, "format", format)
			skipped = append(skipped, p)
			continue
		}
		kept = append(kept, p)
	}
	return kept, skipped
}

func runBatch(ctx context.Context, paths []string, cfg config.Config) []converter.Result {
	opts := converter.BatchOptions{Workers: cfg.Workers, Logger: slog.Default()}

	switch {
	case convertPlain:
		updates := make(chan converter.ProgressUpdate, 64)
		opts.Updates = updates
		bar := progressbar.NewOptions(len(paths),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("converting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		barDone := make(chan struct{})
		go func() {
			defer close(barDone)
			for u := range updates {
				if n := u.ConvertedDelta + u.FailedDelta; n > 0 {
					_ = bar.Add(n)
				}
			}
			_ = bar.Finish()
		}()
		results := converter.ConvertBatch(ctx, paths, convertFormat, cfg.Settings(), opts)
		close(updates)
		<-barDone
		return results

	case !convertJSON && isatty.IsTerminal(os.Stdout.Fd()):
		if logFile == "" {
			opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		updates := make(chan converter.ProgressUpdate, 64)
		opts.Updates = updates
		program := tea.NewProgram(tui.NewModel(convertFormat, updates))

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		uiDone := watchUI(func() error {
			_, err := program.Run()
			return err
		}, cancel, updates)

		results := converter.ConvertBatch(ctx, paths, convertFormat, cfg.Settings(), opts)
		close(updates)
		<-uiDone
		return results

	default:
		return converter.ConvertBatch(ctx, paths, convertFormat, cfg.Settings(), opts)
	}
}

// watchUI runs the progress view in the background. The view owns the
// terminal, so quitting it is how the user interrupts: cancel stops the batch
// and updates keep draining until the batch closes them.
func watchUI(run func() error, cancel context.CancelFunc, updates <-chan converter.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := run(); err != nil {
			slog.Warn("progress view failed", "error", err)
		}
		cancel()
		for range updates {
		}
	}()
	return done
}

func printSkipped(w io.Writer, skipped []string, target string) {
	for _, p := range skipped {
		fmt.Fprintf(w, "%s %s %s\n",
			resultDimStyle.Render("skip"),
			resultPathStyle.Render(p),
			resultDimStyle.Render("already "+target+" (use --include-same to convert)"),
		)
	}
}

func printResults(w io.Writer, results []converter.Result) {
	for _, res := range results {
		if res.Success {
			fmt.Fprintf(w, "%s %s %s %s\n",
				resultOKStyle.Render("ok"),
				resultPathStyle.Render(res.SourcePath),
				resultDimStyle.Render("->"),
				resultPathStyle.Render(res.OutputPath),
			)
			continue
		}
		fmt.Fprintf(w, "%s %s %s\n",
			resultFailStyle.Render("fail"),
			resultPathStyle.Render(res.SourcePath),
			resultDimStyle.Render(res.Error),
		)
	}
}

var (
	resultOKStyle   = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorSuccess)
	resultFailStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorError)
	resultPathStyle = lipgloss.NewStyle().Foreground(tui.ColorInk)
	resultDimStyle  = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertFormat, "format", "f", "", "target format: jpg, png, webp or avif")
	f.StringVarP(&convertOutputDir, "output", "o", "", "destination folder (default ~/Pictures/imgcvt)")
	f.StringVar(&convertPrefix, "prefix", "", "prepend this to every output file name")
	f.Var(&convertConflict, "conflict", "what to do when the output exists: overwrite or numbering")
	f.IntVarP(&convertQuality, "quality", "q", 85, "encoder quality 0-100")
	f.BoolVar(&convertLossless, "lossless", false, "use lossless encoding where the format allows it")
	f.BoolVar(&convertAutoOrient, "auto-orient", false, "rotate JPEG sources according to their EXIF orientation")
	f.IntVar(&convertWorkers, "workers", 1, "number of files converted concurrently")
	f.StringVar(&convertConfigPath, "config", "", "YAML settings file")
	f.StringVar(&convertReportPath, "report", "", "write results to this file (.json for JSON, YAML otherwise)")
	f.BoolVar(&convertJSON, "json", false, "print results as JSON")
	f.BoolVar(&convertPlain, "plain", false, "show a plain progress bar instead of the interactive view")
	f.BoolVar(&convertIncludeSame, "include-same", false, "also convert files already in the target format")
	_ = convertCmd.MarkFlagRequired("format")

	rootCmd.AddCommand(convertCmd)
}
