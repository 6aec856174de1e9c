package layout

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lbieldt/qrlabels/pkg/errors"
)

// rasterExts are the recognized label image extensions, matched
// case-insensitively.
var rasterExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ListImages returns the label image file names in dir, in the directory's
// natural listing order. No further ordering is imposed.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "listing image folder %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if rasterExts[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
