package imgutil

import (
	"io"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// ExifSummary is the part of a file's EXIF block worth showing next to its
// size and type.
type ExifSummary struct {
	Tags     int    `json:"exif_tags" yaml:"exif_tags"`
	Camera   string `json:"camera,omitempty" yaml:"camera,omitempty"`
	Captured string `json:"captured,omitempty" yaml:"captured,omitempty"`
	HasGPS   bool   `json:"has_gps,omitempty" yaml:"has_gps,omitempty"`
}

// readExif never fails: a missing or broken EXIF block is an empty summary.
func readExif(rs io.ReadSeeker) ExifSummary {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return ExifSummary{}
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		return ExifSummary{}
	}
	return summarizeTags(tags)
}

func summarizeTags(tags []exif.ExifTag) ExifSummary {
	s := ExifSummary{Tags: len(tags)}

	var maker, model, original, digitized, modified string
	for _, tag := range tags {
		switch tag.TagName {
		case "Make":
			maker = tagString(tag)
		case "Model", "CameraModelName":
			if model == "" {
				model = tagString(tag)
			}
		case "DateTimeOriginal":
			original = tagString(tag)
		case "DateTimeDigitized":
			digitized = tagString(tag)
		case "DateTime":
			modified = tagString(tag)
		}
		if strings.HasPrefix(tag.TagName, "GPS") || strings.Contains(tag.IfdPath, "GPS") {
			s.HasGPS = true
		}
	}

	// Many vendors repeat the brand at the start of the model string.
	s.Camera = model
	if brand := strings.Fields(maker); len(brand) > 0 &&
		!strings.HasPrefix(strings.ToLower(model), strings.ToLower(brand[0])) {
		s.Camera = strings.TrimSpace(maker + " " + model)
	}

	for _, ts := range []string{original, digitized, modified} {
		if ts != "" {
			s.Captured = exifTimestamp(ts)
			break
		}
	}
	return s
}

func tagString(tag exif.ExifTag) string {
	v := tag.FormattedFirst
	if v == "" {
		v = tag.Formatted
	}
	return strings.TrimSpace(strings.Trim(v, "\x00"))
}

// exifTimestamp turns "2006:01:02 15:04:05" into "2006-01-02 15:04:05".
func exifTimestamp(ts string) string {
	date, clock, ok := strings.Cut(ts, " ")
	if !ok {
		return ts
	}
	return strings.Replace(date, ":", "-", 2) + " " + clock
}
