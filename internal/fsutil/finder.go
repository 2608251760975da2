// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// UnitFileExtension is the file extension for deployment unit templates.
const UnitFileExtension = ".hcl"

// FindUnitFiles resolves the given path to a list of deployment unit files.
// A file path is returned as-is after an existence check; a directory is
// walked recursively for files with the unit extension. The returned slice
// is in lexical walk order.
func FindUnitFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), UnitFileExtension) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
