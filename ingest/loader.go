package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFileType = errors.New("unsupported file type")

var supportedExtensions = map[string]string{
	".txt":      "txt",
	".md":       "md",
	".markdown": "md",
}

// Supported reports whether the file's extension can be loaded.
func Supported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// FileType returns the normalized type tag stored in chunk metadata.
func FileType(path string) string {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

func Load(path string) (string, error) {
	if !Supported(path) {
		return "", ErrUnsupportedFileType
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(bs), nil
}
