package osutil

import (
	"os"
	"path/filepath"
)

// WriteFileAtomic replaces `path` with data, creating parent directories as needed.
// The data goes to a temporary file in the same directory which is then renamed over
// `path`, so readers see either the old or the new contents.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	err = tmp.Close()
	if err != nil {
		os.Remove(tmpName)
		return err
	}
	err = os.Chmod(tmpName, 0644)
	if err != nil {
		os.Remove(tmpName)
		return err
	}
	err = os.Rename(tmpName, path)
	if err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
