package converter

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/gen2brain/avif"
)

var pngEncoder = png.Encoder{CompressionLevel: png.BestCompression}

// avifSpeed trades encoder time for size; 0 is slowest, 10 fastest.
const avifSpeed = 8

// Encode writes buf to w as format, choosing the strategy from quality and
// lossless. It never writes a HEIC stream.
func Encode(w io.Writer, buf *image.NRGBA, format Format, quality int, lossless bool) error {
	switch format {
	case FormatJPG:
		return encodeJPG(w, buf, quality)
	case FormatPNG:
		return encodePNG(w, buf, quality, lossless)
	case FormatWebP:
		return encodeWebP(w, buf, quality, lossless)
	case FormatAVIF:
		return encodeAVIF(w, buf, quality, lossless)
	case FormatHEIC:
		return newError(KindEncode, "", ErrHEICUnsupported)
	default:
		return newError(KindUnsupportedFormat, "", nil)
	}
}

// JPEG has no lossless mode here; lossless is ignored.
func encodeJPG(w io.Writer, buf *image.NRGBA, quality int) error {
	if err := jpeg.Encode(w, buf, &jpeg.Options{Quality: clampQuality(quality)}); err != nil {
		return newError(KindEncode, "", err)
	}
	return nil
}

// PNG has no lossy mode, so the lossy path shrinks the palette instead.
func encodePNG(w io.Writer, buf *image.NRGBA, quality int, lossless bool) error {
	var img image.Image = buf
	if !lossless {
		paletted, err := Quantize(buf, PaletteSize(quality), DitherLevel)
		if err != nil {
			return newError(KindQuantization, "", err)
		}
		img = paletted
	}
	if err := pngEncoder.Encode(w, img); err != nil {
		return newError(KindEncode, "", err)
	}
	return nil
}

// libwebp takes straight-alpha RGBA bytes, but webp.Encode premultiplies any
// NRGBA it is given. Wrapping the NRGBA pixels as an *image.RGBA passes them
// through untouched.
func encodeWebP(w io.Writer, buf *image.NRGBA, quality int, lossless bool) error {
	straight := &image.RGBA{Pix: buf.Pix, Stride: buf.Stride, Rect: buf.Rect}
	opts := &webp.Options{Lossless: lossless, Quality: float32(quality), Exact: lossless}
	if err := webp.Encode(w, straight, opts); err != nil {
		return newError(KindEncode, "", err)
	}
	return nil
}

func encodeAVIF(w io.Writer, buf *image.NRGBA, quality int, lossless bool) error {
	if err := avif.Encode(w, buf, avifOptions(quality, lossless)); err != nil {
		return newError(KindEncode, "", err)
	}
	return nil
}

// avifOptions never passes quality 0 to the encoder. Lossless AVIF is
// approximated with maximum quality and no chroma subsampling.
func avifOptions(quality int, lossless bool) avif.Options {
	opts := avif.Options{
		Quality:           clampQuality(quality),
		QualityAlpha:      clampQuality(quality),
		Speed:             avifSpeed,
		ChromaSubsampling: image.YCbCrSubsampleRatio420,
	}
	if lossless {
		opts.Quality = 100
		opts.QualityAlpha = 100
		opts.ChromaSubsampling = image.YCbCrSubsampleRatio444
	}
	return opts
}

func clampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}
