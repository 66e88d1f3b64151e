package file

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// Default file permissions
const (
	DefaultDirPermissions  = 0o755
	DefaultFilePermissions = 0o644
)

var errEmptyPath = errors.New("empty file path")

// Write writes selected data to a file or returns an error if it fails. This
// func also ensures that all files are set to this permission (only rw access
// for the running user and the group the user is a member of)
func Write(file string, data []byte) error {
	w, err := Writer(file)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	if cErr := w.Close(); err == nil {
		err = cErr
	}
	return err
}

// Writer creates a writer for the named file, creating any missing parent
// directories and truncating an existing file
func Writer(file string) (io.WriteCloser, error) {
	if file == "" {
		return nil, errEmptyPath
	}
	basePath := filepath.Dir(file)
	if !Exists(basePath) {
		if err := os.MkdirAll(basePath, DefaultDirPermissions); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(file, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultFilePermissions)
}

// Exists returns whether or not a file or path exists
func Exists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}
