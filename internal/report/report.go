// Package report persists the results of a conversion batch.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"imgcvt/internal/converter"
)

// Header records how a batch was run.
type Header struct {
	Target             string `json:"target" yaml:"target"`
	OutputPath         string `json:"output_path" yaml:"output_path"`
	FilePrefix         string `json:"file_prefix,omitempty" yaml:"file_prefix,omitempty"`
	ConflictResolution string `json:"conflict_resolution" yaml:"conflict_resolution"`
	Quality            int    `json:"quality" yaml:"quality"`
	Lossless           bool   `json:"lossless" yaml:"lossless"`
	Timestamp          string `json:"timestamp" yaml:"timestamp"`
}

type Totals struct {
	Total        int   `json:"total" yaml:"total"`
	Converted    int   `json:"converted" yaml:"converted"`
	Failed       int   `json:"failed" yaml:"failed"`
	BytesWritten int64 `json:"bytes_written" yaml:"bytes_written"`
}

// Report is the document written by Save.
type Report struct {
	Batch   Header             `json:"batch" yaml:"batch"`
	Totals  Totals             `json:"totals" yaml:"totals"`
	Results []converter.Result `json:"results" yaml:"results"`
}

// New assembles a report for results produced with target and settings.
func New(target string, settings converter.Settings, results []converter.Result) Report {
	s := converter.Summarize(results)
	return Report{
		Batch: Header{
			Target:             target,
			OutputPath:         settings.OutputPath,
			FilePrefix:         settings.FilePrefix,
			ConflictResolution: settings.ConflictResolution.String(),
			Quality:            settings.Quality,
			Lossless:           settings.Lossless,
			Timestamp:          time.Now().Format(time.RFC3339),
		},
		Totals: Totals{
			Total:        s.Total,
			Converted:    s.Converted,
			Failed:       s.Failed,
			BytesWritten: s.BytesWritten,
		},
		Results: results,
	}
}

// Save writes r to path as JSON when the extension is .json, YAML otherwise.
func Save(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = WriteJSON(f, r)
	} else {
		err = WriteYAML(f, r)
	}
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
