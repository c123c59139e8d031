package converter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MaxNumberingAttempts bounds the numbered-suffix probe.
const MaxNumberingAttempts = 10000

const fallbackStem = "image"

// ResolveOutputPath computes where source converted to format should be written
// and creates the destination directory. With Numbering the first free
// {prefix}{stem}_{n}.{ext} is chosen when the plain name is taken.
func ResolveOutputPath(source string, format Format, settings Settings) (string, error) {
	stem := sourceStem(source)
	path := candidatePath(settings, stem, format, 0)
	if err := ensureDir(path); err != nil {
		return "", err
	}

	if settings.ConflictResolution == Overwrite || !exists(path) {
		return path, nil
	}

	for n := 1; n <= MaxNumberingAttempts; n++ {
		candidate := candidatePath(settings, stem, format, n)
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", newError(KindTooManyConflicts, path, fmt.Errorf("no free name after %d attempts", MaxNumberingAttempts))
}

// createOutput opens the destination for writing. Numbering claims each
// candidate with O_EXCL so two workers can never end up on the same name.
func createOutput(source string, format Format, settings Settings) (*os.File, string, error) {
	if settings.ConflictResolution == Overwrite {
		path, err := ResolveOutputPath(source, format, settings)
		if err != nil {
			return nil, "", err
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, "", newError(KindFileCreate, path, err)
		}
		return f, path, nil
	}

	stem := sourceStem(source)
	first := candidatePath(settings, stem, format, 0)
	if err := ensureDir(first); err != nil {
		return nil, "", err
	}

	for n := 0; n <= MaxNumberingAttempts; n++ {
		path := candidatePath(settings, stem, format, n)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", newError(KindFileCreate, path, err)
		}
	}
	return nil, "", newError(KindTooManyConflicts, first, fmt.Errorf("no free name after %d attempts", MaxNumberingAttempts))
}

func candidatePath(settings Settings, stem string, format Format, n int) string {
	name := settings.FilePrefix + stem
	if n > 0 {
		name = fmt.Sprintf("%s_%d", name, n)
	}
	return filepath.Join(settings.OutputPath, name+"."+format.Ext())
}

// sourceStem is the file name without its extension; dot-files keep their
// whole name and paths without a file name fall back to "image".
func sourceStem(source string) string {
	base := filepath.Base(source)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return fallbackStem
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return stem
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newError(KindDirectoryCreate, dir, err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
