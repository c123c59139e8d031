package imgutil

import (
	"errors"
	"io"
	"net/http"
	"os"
)

// Metadata describes a file on disk without decoding its pixels.
type Metadata struct {
	Size     int64  `json:"size" yaml:"size"`
	MIMEType string `json:"mime_type" yaml:"mime_type"`
	Kind     Kind   `json:"-" yaml:"-"`

	ExifSummary `yaml:",inline"`
}

// sniffLen matches the amount of data http.DetectContentType considers.
const sniffLen = 512

// Probe reports the size of path and a MIME type inferred from its content.
// Only an unreadable path is an error; EXIF problems leave the summary empty.
func Probe(path string) (Metadata, error) {
	md := Metadata{}

	f, err := os.Open(path)
	if err != nil {
		return md, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return md, err
	}
	if info.IsDir() {
		return md, errors.New("is a directory")
	}
	md.Size = info.Size()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return md, err
	}
	head = head[:n]

	if n >= HeaderSize {
		md.Kind, _ = DetectHeader(head)
	}
	md.MIMEType = md.Kind.MIMEType()
	if md.MIMEType == "" {
		md.MIMEType = http.DetectContentType(head)
	}

	if md.Kind != KindUnknown {
		md.ExifSummary = readExif(f)
	}

	return md, nil
}
