// Package fs holds the file helpers used to read inputs and write key
// material and ciphertexts.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	defaultDirectoryPermission = 0o740
	secureFilePermission       = 0o600
)

// Exists returns whether the given file or directory exists.
func Exists(filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return true, err
}

// CreateSecureFolder creates folder with owner-only permissions when it does
// not exist yet.
func CreateSecureFolder(folder string) error {
	exists, err := Exists(folder)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return os.MkdirAll(folder, defaultDirectoryPermission)
}

// CreateSecureFile creates a file with wr permission for user only and returns
// the file handle.
func CreateSecureFile(file string) (*os.File, error) {
	fd, err := os.Create(file)
	if err != nil {
		return nil, err
	}
	fd.Close()
	if err := os.Chmod(file, secureFilePermission); err != nil {
		return nil, fmt.Errorf("fs: restricting %s: %w", file, err)
	}
	return os.OpenFile(file, os.O_RDWR|os.O_TRUNC, secureFilePermission)
}

// WriteSecureFile writes data to file, creating its parent folder if needed.
func WriteSecureFile(file string, data []byte) error {
	if err := CreateSecureFolder(filepath.Dir(file)); err != nil {
		return err
	}
	fd, err := CreateSecureFile(file)
	if err != nil {
		return err
	}
	if _, err := fd.Write(data); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}
