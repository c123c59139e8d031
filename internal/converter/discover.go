package converter

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"imgcvt/pkg/imgutil"
)

// Source kinds picked up when a directory is expanded.
var discoverableKinds = map[imgutil.Kind]bool{
	imgutil.KindJPEG: true,
	imgutil.KindPNG:  true,
	imgutil.KindWebP: true,
	imgutil.KindAVIF: true,
}

// Discover expands directory arguments into the images they contain, sorted
// for a deterministic order. File arguments pass through untouched, even when
// missing or unreadable, so their failure shows up in the batch results.
func Discover(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !d.Type().IsRegular() {
				return nil
			}
			kind, err := imgutil.SniffFile(path)
			if err != nil {
				return nil
			}
			if discoverableKinds[kind] {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}
