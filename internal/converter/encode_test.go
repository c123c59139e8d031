package converter

import (
	"image"
	"path/filepath"
	"testing"
)

func TestClampQuality(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{70, 70},
		{100, 100},
		{150, 100},
	}
	for _, tt := range tests {
		if got := clampQuality(tt.in); got != tt.want {
			t.Errorf("clampQuality(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAVIFOptions(t *testing.T) {
	opts := avifOptions(0, false)
	if opts.Quality != 1 || opts.QualityAlpha != 1 {
		t.Errorf("quality 0 reached the encoder: %+v", opts)
	}
	if opts.ChromaSubsampling != image.YCbCrSubsampleRatio420 {
		t.Errorf("lossy subsampling = %v", opts.ChromaSubsampling)
	}

	opts = avifOptions(0, true)
	if opts.Quality != 100 || opts.QualityAlpha != 100 || opts.ChromaSubsampling != image.YCbCrSubsampleRatio444 {
		t.Errorf("lossless options = %+v", opts)
	}
}

func TestConvertOneQualityZero(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")
	writePNG(t, src, gradient(24, 16))

	for _, format := range []Format{FormatAVIF, FormatJPG, FormatWebP, FormatPNG} {
		settings := testSettings(t)
		settings.Quality = 0

		path, err := ConvertOne(src, format, settings)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		got, err := Decode(path, false)
		if err != nil {
			t.Fatalf("%s: decode: %v", format, err)
		}
		if got.Bounds().Dx() != 24 || got.Bounds().Dy() != 16 {
			t.Errorf("%s: bounds = %v", format, got.Bounds())
		}
	}
}
