package converter

import (
	"errors"
	"fmt"
	"strings"
)

// ConflictResolution decides what happens when the computed output path is taken.
type ConflictResolution string

const (
	Overwrite ConflictResolution = "overwrite"
	Numbering ConflictResolution = "numbering"
)

// ParseConflictResolution maps a case-insensitive policy tag to its variant.
func ParseConflictResolution(s string) (ConflictResolution, error) {
	switch ConflictResolution(strings.ToLower(strings.TrimSpace(s))) {
	case Overwrite:
		return Overwrite, nil
	case Numbering:
		return Numbering, nil
	default:
		return "", fmt.Errorf("invalid conflict resolution %q (use 'overwrite' or 'numbering')", s)
	}
}

func (c ConflictResolution) String() string { return string(c) }

// Set and Type let the policy be used directly as a pflag value.
func (c *ConflictResolution) Set(s string) error {
	parsed, err := ParseConflictResolution(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c *ConflictResolution) Type() string { return "overwrite|numbering" }

func (c ConflictResolution) MarshalText() ([]byte, error) { return []byte(c), nil }

func (c *ConflictResolution) UnmarshalText(text []byte) error { return c.Set(string(text)) }

// Settings is shared read-only by every item of a batch.
type Settings struct {
	OutputPath         string
	FilePrefix         string
	ConflictResolution ConflictResolution
	Quality            int
	Lossless           bool
	// AutoOrient applies the EXIF orientation tag while decoding.
	AutoOrient bool
}

// Validate reports the first field that would make every conversion fail.
func (s Settings) Validate() error {
	if s.OutputPath == "" {
		return errors.New("output path must not be empty")
	}
	if s.Quality < 0 || s.Quality > 100 {
		return fmt.Errorf("quality %d out of range (0-100)", s.Quality)
	}
	if _, err := ParseConflictResolution(string(s.ConflictResolution)); err != nil {
		return err
	}
	return nil
}

// Result is the outcome of converting one source file.
type Result struct {
	SourcePath string `json:"source_path" yaml:"source_path"`
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Success    bool   `json:"success" yaml:"success"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	OutputSize int64  `json:"output_size,omitempty" yaml:"output_size,omitempty"`
}

// Summary aggregates a finished batch.
type Summary struct {
	Total        int
	Converted    int
	Failed       int
	BytesWritten int64
}

// Summarize counts successes, failures and bytes written across results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, res := range results {
		if res.Success {
			s.Converted++
			s.BytesWritten += res.OutputSize
		} else {
			s.Failed++
		}
	}
	return s
}

type ProgressUpdate struct {
	TotalDelta     int
	ConvertedDelta int
	FailedDelta    int
	BytesDelta     int64
}
