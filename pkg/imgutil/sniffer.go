package imgutil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// Kind identifies an image container recognised by its leading bytes.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindGIF
	KindWebP
	KindAVIF
	KindHEIC
	KindBMP
	KindTIFF
)

// HeaderSize is the number of leading bytes DetectHeader needs.
const HeaderSize = 12

// SniffSize is how much SniffReader reads, enough for an ISO-BMFF ftyp box
// with its compatible brands.
const SniffSize = 64

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindGIF:
		return "gif"
	case KindWebP:
		return "webp"
	case KindAVIF:
		return "avif"
	case KindHEIC:
		return "heic"
	case KindBMP:
		return "bmp"
	case KindTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// MIMEType returns the media type for k, or "" for KindUnknown.
func (k Kind) MIMEType() string {
	switch k {
	case KindUnknown:
		return ""
	case KindHEIC:
		return "image/heic"
	default:
		return "image/" + k.String()
	}
}

var (
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	gif87Sig  = []byte("GIF87a")
	gif89Sig  = []byte("GIF89a")
	riffSig   = []byte("RIFF")
	webpSig   = []byte("WEBP")
	ftypSig   = []byte("ftyp")
	bmpSig    = []byte("BM")
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
)

// ISO-BMFF brands. mif1 and msf1 are generic HEIF brands that AVIF files use
// too; those declare avif or avis among their compatible brands.
var (
	avifBrands = map[string]bool{"avif": true, "avis": true}
	heicBrands = map[string]bool{
		"heic": true, "heix": true, "heim": true, "heis": true,
		"hevc": true, "hevx": true, "mif1": true, "msf1": true,
	}
)

// DetectHeader inspects the first HeaderSize bytes of a file for known signatures.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < HeaderSize {
		return KindUnknown, errors.New("header too short")
	}

	switch {
	case bytes.HasPrefix(header, jpegSig):
		return KindJPEG, nil
	case bytes.HasPrefix(header, pngSig):
		return KindPNG, nil
	case bytes.HasPrefix(header, gif87Sig), bytes.HasPrefix(header, gif89Sig):
		return KindGIF, nil
	case bytes.HasPrefix(header, riffSig) && bytes.Equal(header[8:12], webpSig):
		return KindWebP, nil
	case bytes.Equal(header[4:8], ftypSig):
		return ftypKind(header), nil
	case bytes.HasPrefix(header, tiffSigLE), bytes.HasPrefix(header, tiffSigBE):
		return KindTIFF, nil
	case bytes.HasPrefix(header, bmpSig):
		return KindBMP, nil
	}

	return KindUnknown, nil
}

func ftypKind(header []byte) Kind {
	major := string(header[8:12])
	if avifBrands[major] {
		return KindAVIF
	}
	for _, brand := range compatibleBrands(header) {
		if avifBrands[brand] {
			return KindAVIF
		}
	}
	if heicBrands[major] {
		return KindHEIC
	}
	return KindUnknown
}

// compatibleBrands lists the brands of the ftyp box that fit in header. They
// follow the major brand and the 4-byte minor version.
func compatibleBrands(header []byte) []string {
	end := int(binary.BigEndian.Uint32(header[0:4]))
	if end > len(header) {
		end = len(header)
	}
	var brands []string
	for i := 16; i+4 <= end; i += 4 {
		brands = append(brands, string(header[i:i+4]))
	}
	return brands
}

// SniffFile reads the leading bytes of a file to determine its type.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads up to SniffSize bytes from r and determines its type.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, SniffSize)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return KindUnknown, err
	}

	return DetectHeader(header[:n])
}
