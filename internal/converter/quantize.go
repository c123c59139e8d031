package converter

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// DitherLevel is the error-diffusion strength used for pseudo-lossy PNG.
const DitherLevel = 0.5

// PaletteSize maps quality 0-100 to a palette of 256 down to 56 colors.
func PaletteSize(quality int) int {
	n := int(math.Round(256 - float64(quality)/100*200))
	if n < 2 {
		n = 2
	}
	if n > 256 {
		n = 256
	}
	return n
}

type colorCount struct {
	c [4]uint8
	n int
}

// Quantize reduces img to at most colors palette entries using median cut and
// remaps every pixel to its perceptually nearest entry (CIE L*a*b*), diffusing
// the remaining error with Floyd-Steinberg weights scaled by dither.
func Quantize(img *image.NRGBA, colors int, dither float64) (*image.Paletted, error) {
	if img == nil || img.Rect.Empty() {
		return nil, errors.New("empty image")
	}
	if colors < 2 || colors > 256 {
		return nil, fmt.Errorf("palette size %d out of range (2-256)", colors)
	}
	if dither < 0 || dither > 1 {
		return nil, fmt.Errorf("dithering level %.2f out of range (0-1)", dither)
	}

	hist := histogram(img)
	if len(hist) <= colors {
		return remapExact(img, hist), nil
	}

	entries := make([]colorCount, 0, len(hist))
	for key, n := range hist {
		entries = append(entries, colorCount{c: unpack(key), n: n})
	}
	// Map iteration order is random; sort so the palette is deterministic.
	sort.Slice(entries, func(i, j int) bool { return pack(entries[i].c) < pack(entries[j].c) })

	pal := medianCut(entries, colors)
	return remapDithered(img, pal, dither), nil
}

func histogram(img *image.NRGBA) map[uint32]int {
	hist := make(map[uint32]int)
	b := img.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[pack(pixelAt(img, x, y))]++
		}
	}
	return hist
}

func pixelAt(img *image.NRGBA, x, y int) [4]uint8 {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	if p[3] == 0 {
		return [4]uint8{}
	}
	return [4]uint8{p[0], p[1], p[2], p[3]}
}

func pack(c [4]uint8) uint32 {
	return uint32(c[0])<<24 | uint32(c[1])<<16 | uint32(c[2])<<8 | uint32(c[3])
}

func unpack(k uint32) [4]uint8 {
	return [4]uint8{uint8(k >> 24), uint8(k >> 16), uint8(k >> 8), uint8(k)}
}

func remapExact(img *image.NRGBA, hist map[uint32]int) *image.Paletted {
	keys := make([]uint32, 0, len(hist))
	for k := range hist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	pal := make(color.Palette, len(keys))
	index := make(map[uint32]uint8, len(keys))
	for i, k := range keys {
		c := unpack(k)
		pal[i] = color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
		index[k] = uint8(i)
	}

	out := image.NewPaletted(img.Rect, pal)
	b := img.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.SetColorIndex(x, y, index[pack(pixelAt(img, x, y))])
		}
	}
	return out
}

// colorBox caches its widest channel so medianCut never rescans a box it
// does not split.
type colorBox struct {
	entries []colorCount
	total   int
	channel int
	width   int
	score   int
}

func newColorBox(entries []colorCount) colorBox {
	b := colorBox{entries: entries}
	lo := [4]uint8{255, 255, 255, 255}
	var hi [4]uint8
	for _, e := range entries {
		b.total += e.n
		for ch := 0; ch < 4; ch++ {
			if e.c[ch] < lo[ch] {
				lo[ch] = e.c[ch]
			}
			if e.c[ch] > hi[ch] {
				hi[ch] = e.c[ch]
			}
		}
	}
	b.width = -1
	for ch := 0; ch < 4; ch++ {
		if w := int(hi[ch]) - int(lo[ch]); w > b.width {
			b.channel, b.width = ch, w
		}
	}
	b.score = b.width * int(math.Sqrt(float64(b.total)))
	return b
}

func (b colorBox) average() [4]uint8 {
	var sum [4]float64
	for _, e := range b.entries {
		for ch := 0; ch < 4; ch++ {
			sum[ch] += float64(e.c[ch]) * float64(e.n)
		}
	}
	var out [4]uint8
	for ch := 0; ch < 4; ch++ {
		out[ch] = uint8(math.Round(sum[ch] / float64(b.total)))
	}
	return out
}

// medianCut splits the most spread-out box at its population median until
// there are n boxes or nothing is left to split.
func medianCut(entries []colorCount, n int) [][4]uint8 {
	boxes := []colorBox{newColorBox(entries)}
	for len(boxes) < n {
		pick, pickScore := -1, 0
		for i, b := range boxes {
			if len(b.entries) < 2 || b.width <= 0 {
				continue
			}
			if b.score >= pickScore {
				pick, pickScore = i, b.score
			}
		}
		if pick < 0 {
			break
		}

		b := boxes[pick]
		pickChannel := b.channel
		sort.SliceStable(b.entries, func(i, j int) bool {
			return b.entries[i].c[pickChannel] < b.entries[j].c[pickChannel]
		})
		split, acc := 1, 0
		for i, e := range b.entries {
			acc += e.n
			if acc*2 >= b.total {
				split = i + 1
				break
			}
		}
		if split >= len(b.entries) {
			split = len(b.entries) - 1
		}

		boxes[pick] = newColorBox(b.entries[:split])
		boxes = append(boxes, newColorBox(b.entries[split:]))
	}

	pal := make([][4]uint8, len(boxes))
	for i, b := range boxes {
		pal[i] = b.average()
	}
	return pal
}

type labEntry struct {
	l, a, b, alpha float64
}

func toLab(c [4]uint8) labEntry {
	l, a, b := colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}.Lab()
	return labEntry{l: l, a: a, b: b, alpha: float64(c[3]) / 255}
}

// Colors are matched per 5-bit-per-channel bucket, which keeps the memo
// bounded and hit rates high once dithering spreads values out.
const (
	bucketBits = 5
	bucketDrop = 8 - bucketBits
)

type nearestMatcher struct {
	lab []labEntry
	// memo holds index+1 per bucket; zero means not yet computed.
	memo []uint16
}

func newNearestMatcher(pal [][4]uint8) *nearestMatcher {
	m := &nearestMatcher{
		lab:  make([]labEntry, len(pal)),
		memo: make([]uint16, 1<<(4*bucketBits)),
	}
	for i, c := range pal {
		m.lab[i] = toLab(c)
	}
	return m
}

func bucketOf(c [4]uint8) uint32 {
	return uint32(c[0]>>bucketDrop)<<(3*bucketBits) |
		uint32(c[1]>>bucketDrop)<<(2*bucketBits) |
		uint32(c[2]>>bucketDrop)<<bucketBits |
		uint32(c[3]>>bucketDrop)
}

// bucketCenter is the color every member of c's bucket is matched as.
func bucketCenter(c [4]uint8) [4]uint8 {
	const half = 1 << (bucketDrop - 1)
	var out [4]uint8
	for ch := 0; ch < 4; ch++ {
		out[ch] = c[ch]>>bucketDrop<<bucketDrop | half
	}
	return out
}

func (m *nearestMatcher) nearest(c [4]uint8) uint8 {
	key := bucketOf(c)
	if v := m.memo[key]; v != 0 {
		return uint8(v - 1)
	}
	target := toLab(bucketCenter(c))
	best, bestDist := 0, math.Inf(1)
	for i, e := range m.lab {
		dl, da, db, dA := target.l-e.l, target.a-e.a, target.b-e.b, target.alpha-e.alpha
		dist := dl*dl + da*da + db*db + dA*dA
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	m.memo[key] = uint16(best) + 1
	return uint8(best)
}

func remapDithered(img *image.NRGBA, pal [][4]uint8, dither float64) *image.Paletted {
	palette := make(color.Palette, len(pal))
	for i, c := range pal {
		palette[i] = color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
	}
	out := image.NewPaletted(img.Rect, palette)
	matcher := newNearestMatcher(pal)

	b := img.Rect
	width := b.Dx()
	// Error rows are padded by one pixel on each side.
	cur := make([][4]float64, width+2)
	next := make([][4]float64, width+2)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			col := x - b.Min.X + 1
			src := pixelAt(img, x, y)

			var want [4]float64
			var rounded [4]uint8
			for ch := 0; ch < 4; ch++ {
				v := float64(src[ch]) + cur[col][ch]
				want[ch] = math.Max(0, math.Min(255, v))
				rounded[ch] = uint8(math.Round(want[ch]))
			}

			idx := matcher.nearest(rounded)
			out.SetColorIndex(x, y, idx)

			if dither == 0 {
				continue
			}
			got := pal[idx]
			for ch := 0; ch < 4; ch++ {
				e := (want[ch] - float64(got[ch])) * dither
				cur[col+1][ch] += e * 7 / 16
				next[col-1][ch] += e * 3 / 16
				next[col][ch] += e * 5 / 16
				next[col+1][ch] += e * 1 / 16
			}
		}
		cur, next = next, cur
		for i := range next {
			next[i] = [4]float64{}
		}
	}
	return out
}
