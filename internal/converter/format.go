package converter

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the closed set of conversion targets.
type Format int

const (
	FormatJPG Format = iota + 1
	FormatPNG
	FormatWebP
	FormatAVIF
	// FormatHEIC parses but is never encoded.
	FormatHEIC
)

// ParseFormat is the single point where a target string becomes a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "jpg", "jpeg":
		return FormatJPG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	case "avif":
		return FormatAVIF, nil
	case "heic", "heif":
		return FormatHEIC, nil
	default:
		return 0, &Error{Kind: KindUnsupportedFormat, Err: fmt.Errorf("%q", s)}
	}
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatJPG:
		return "jpg"
	case FormatPNG:
		return "png"
	case FormatWebP:
		return "webp"
	case FormatAVIF:
		return "avif"
	case FormatHEIC:
		return "heic"
	default:
		return ""
	}
}

func (f Format) String() string { return f.Ext() }

// Supported reports whether f can actually be encoded.
func (f Format) Supported() bool {
	switch f {
	case FormatJPG, FormatPNG, FormatWebP, FormatAVIF:
		return true
	default:
		return false
	}
}

// IsSameFormat reports whether path already carries f's extension (jpg and jpeg are equal).
func IsSameFormat(path string, f Format) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	if f == FormatJPG {
		return ext == "jpg" || ext == "jpeg"
	}
	if f == FormatHEIC {
		return ext == "heic" || ext == "heif"
	}
	return ext == f.Ext()
}
