package converter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/avif"
	"golang.org/x/image/webp"

	"imgcvt/pkg/imgutil"
)

// Decode reads path and returns its pixels as an NRGBA buffer. The source
// type comes from the file's leading bytes, never from its extension.
func Decode(path string, autoOrient bool) (*image.NRGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(KindDecode, "", err)
	}

	kind, err := imgutil.DetectHeader(data)
	if err != nil {
		return nil, newError(KindDecode, "", fmt.Errorf("unrecognized image data: %w", err))
	}

	var img image.Image
	switch kind {
	case imgutil.KindHEIC:
		return nil, newError(KindDecode, "", ErrHEICUnsupported)
	case imgutil.KindAVIF:
		img, err = avif.Decode(bytes.NewReader(data))
	case imgutil.KindWebP:
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(autoOrient))
	}
	if err != nil {
		if kind == imgutil.KindUnknown {
			err = fmt.Errorf("unsupported or corrupt image data: %w", err)
		}
		return nil, newError(KindDecode, "", err)
	}

	buf := imaging.Clone(img)
	if buf.Rect.Empty() {
		return nil, newError(KindDecode, "", errors.New("image has no pixels"))
	}
	return buf, nil
}
