package converter

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
	"time"
)

func TestPaletteSize(t *testing.T) {
	tests := []struct {
		quality int
		want    int
	}{
		{0, 256},
		{50, 156},
		{85, 86},
		{100, 56},
	}
	for _, tt := range tests {
		if got := PaletteSize(tt.quality); got != tt.want {
			t.Errorf("PaletteSize(%d) = %d, want %d", tt.quality, got, tt.want)
		}
	}
}

func TestQuantizeKeepsFewColorsExact(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	colors := []color.NRGBA{
		{R: 0xff, A: 0xff},
		{G: 0xff, A: 0xff},
		{B: 0xff, A: 0x80},
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, colors[(x+y)%len(colors)])
		}
	}

	out, err := Quantize(img, 8, DitherLevel)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if len(out.Palette) != len(colors) {
		t.Fatalf("palette has %d entries, want %d", len(out.Palette), len(colors))
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := colors[(x+y)%len(colors)]
			got := color.NRGBAModel.Convert(out.At(x, y)).(color.NRGBA)
			if got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestQuantizeReducesPalette(t *testing.T) {
	img := gradient(64, 64)

	for _, n := range []int{2, 16, 56} {
		out, err := Quantize(img, n, DitherLevel)
		if err != nil {
			t.Fatalf("Quantize(%d): %v", n, err)
		}
		if len(out.Palette) > n {
			t.Errorf("Quantize(%d) palette has %d entries", n, len(out.Palette))
		}
		if out.Bounds() != img.Bounds() {
			t.Errorf("bounds changed: %v", out.Bounds())
		}
	}
}

func TestQuantizeWithoutDitherIsDeterministic(t *testing.T) {
	img := gradient(32, 32)
	a, err := Quantize(img, 16, 0)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	b, err := Quantize(img, 16, 0)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("index %d differs between runs", i)
		}
	}
}

func TestQuantizeRejectsBadInput(t *testing.T) {
	if _, err := Quantize(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 16, DitherLevel); err == nil {
		t.Error("expected error for empty image")
	}
	if _, err := Quantize(gradient(2, 2), 1, DitherLevel); err == nil {
		t.Error("expected error for palette of 1")
	}
	if _, err := Quantize(gradient(2, 2), 16, 1.5); err == nil {
		t.Error("expected error for dithering above 1")
	}
}

func TestColorBoxTracksWidestChannel(t *testing.T) {
	b := newColorBox([]colorCount{
		{c: [4]uint8{10, 200, 0, 255}, n: 3},
		{c: [4]uint8{20, 40, 5, 255}, n: 1},
		{c: [4]uint8{15, 90, 2, 255}, n: 4},
	})
	if b.total != 8 {
		t.Errorf("total = %d, want 8", b.total)
	}
	if b.channel != 1 || b.width != 160 {
		t.Errorf("widest = channel %d width %d, want channel 1 width 160", b.channel, b.width)
	}
	if b.score != 160*2 {
		t.Errorf("score = %d, want %d", b.score, 160*2)
	}
}

func TestNearestMatcherSharesBuckets(t *testing.T) {
	m := newNearestMatcher([][4]uint8{{0, 0, 0, 255}, {255, 255, 255, 255}, {255, 0, 0, 255}})

	if got := m.nearest([4]uint8{250, 10, 5, 255}); got != 2 {
		t.Errorf("reddish matched %d, want 2", got)
	}
	if got := m.nearest([4]uint8{3, 1, 6, 250}); got != 0 {
		t.Errorf("near-black matched %d, want 0", got)
	}

	computed := 0
	for _, v := range m.memo {
		if v != 0 {
			computed++
		}
	}
	// Same bucket as the reddish color above: served from the memo.
	if got := m.nearest([4]uint8{255, 12, 0, 252}); got != 2 {
		t.Errorf("bucket neighbour matched %d, want 2", got)
	}
	after := 0
	for _, v := range m.memo {
		if v != 0 {
			after++
		}
	}
	if after != computed {
		t.Errorf("memo grew from %d to %d for a color in a known bucket", computed, after)
	}
}

func TestQuantizeNoiseImageIsFast(t *testing.T) {
	if testing.Short() {
		t.Skip("large image")
	}
	rng := rand.New(rand.NewSource(1))
	img := image.NewNRGBA(image.Rect(0, 0, 1024, 1024))
	rng.Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}

	start := time.Now()
	out, err := Quantize(img, 256, DitherLevel)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if len(out.Palette) > 256 {
		t.Errorf("palette has %d entries", len(out.Palette))
	}
	if elapsed := time.Since(start); elapsed > 20*time.Second {
		t.Errorf("quantizing 1 MP of noise took %s", elapsed)
	}
}

// gradient has a distinct color at nearly every pixel.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x*7 + y*13) % 256),
				A: 0xff,
			})
		}
	}
	return img
}
