package converter

import (
	"errors"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"jpg", FormatJPG, false},
		{"JPEG", FormatJPG, false},
		{".Jpg", FormatJPG, false},
		{"png", FormatPNG, false},
		{"WebP", FormatWebP, false},
		{"avif", FormatAVIF, false},
		{"heic", FormatHEIC, false},
		{"HEIF", FormatHEIC, false},
		{"tiff", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("error %v is not ErrUnsupportedFormat", err)
				}
				if !strings.Contains(err.Error(), "unsupported format") {
					t.Errorf("error message %q", err.Error())
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatSupported(t *testing.T) {
	for _, f := range []Format{FormatJPG, FormatPNG, FormatWebP, FormatAVIF} {
		if !f.Supported() {
			t.Errorf("%v should be supported", f)
		}
	}
	if FormatHEIC.Supported() {
		t.Error("heic must not be supported")
	}
}

func TestIsSameFormat(t *testing.T) {
	tests := []struct {
		path   string
		format Format
		want   bool
	}{
		{"a/photo.jpeg", FormatJPG, true},
		{"photo.JPG", FormatJPG, true},
		{"photo.png", FormatJPG, false},
		{"photo.webp", FormatWebP, true},
		{"photo", FormatPNG, false},
		{"photo.heif", FormatHEIC, true},
	}
	for _, tt := range tests {
		if got := IsSameFormat(tt.path, tt.format); got != tt.want {
			t.Errorf("IsSameFormat(%q, %v) = %v, want %v", tt.path, tt.format, got, tt.want)
		}
	}
}

func TestParseConflictResolution(t *testing.T) {
	tests := []struct {
		in      string
		want    ConflictResolution
		wantErr bool
	}{
		{"overwrite", Overwrite, false},
		{"Numbering", Numbering, false},
		{" numbering ", Numbering, false},
		{"skip", "", true},
	}
	for _, tt := range tests {
		got, err := ParseConflictResolution(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseConflictResolution(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseConflictResolution(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	base := Settings{OutputPath: "out", ConflictResolution: Numbering, Quality: 80}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"empty output", func(s *Settings) { s.OutputPath = "" }},
		{"quality too high", func(s *Settings) { s.Quality = 101 }},
		{"negative quality", func(s *Settings) { s.Quality = -1 }},
		{"unknown policy", func(s *Settings) { s.ConflictResolution = "skip" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	err := newError(KindDirectoryCreate, "/out", errors.New("permission denied"))
	if got, want := err.Error(), "cannot create output directory /out: permission denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if KindOf(err) != KindDirectoryCreate {
		t.Errorf("KindOf = %v", KindOf(err))
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Error("KindOf(plain error) should be 0")
	}
	if !errors.Is(newError(KindTooManyConflicts, "", nil), ErrTooManyConflicts) {
		t.Error("too-many-conflicts error should match its sentinel")
	}
}
