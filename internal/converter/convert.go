package converter

import (
	"bufio"
	"os"
)

// ConvertOne converts a single source file and returns the path written.
// Nothing is left on disk when it fails.
func ConvertOne(source string, format Format, settings Settings) (string, error) {
	path, _, err := convertFile(source, format, settings)
	return path, err
}

func convertFile(source string, format Format, settings Settings) (string, int64, error) {
	if !format.Supported() {
		var cause error
		if format == FormatHEIC {
			cause = ErrHEICUnsupported
		}
		return "", 0, newError(KindUnsupportedFormat, "", cause)
	}

	buf, err := Decode(source, settings.AutoOrient)
	if err != nil {
		return "", 0, err
	}

	f, path, err := createOutput(source, format, settings)
	if err != nil {
		return "", 0, err
	}

	w := bufio.NewWriter(f)
	if err := Encode(w, buf, format, settings.Quality, settings.Lossless); err != nil {
		discard(f)
		return "", 0, err
	}
	if err := w.Flush(); err != nil {
		discard(f)
		return "", 0, newError(KindEncode, path, err)
	}
	info, err := f.Stat()
	if err != nil {
		discard(f)
		return "", 0, newError(KindEncode, path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", 0, newError(KindEncode, path, err)
	}

	return path, info.Size(), nil
}

func discard(f *os.File) {
	_ = f.Close()
	_ = os.Remove(f.Name())
}
