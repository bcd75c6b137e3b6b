package runtime

import (
	"os"

	"github.com/schevalier/flocker/internal/errkind"
)

// FileConfigWriter owns the configuration file path: writes take an
// exclusive advisory lock (an O_EXCL sentinel file beside the target) with
// guaranteed release on every exit path, and fail with a
// CreateConfigurationError when the lock is held or the file cannot be
// written (spec §5). The file is written in place, not atomically replaced.
//
// No example repo in the corpus reaches for a dedicated file-locking
// library for this kind of single-process sentinel lock, so this stays on
// the standard library rather than importing one for a two-line need.
type FileConfigWriter struct{}

func (FileConfigWriter) Write(path string, data []byte) error {
	lockPath := path + ".lock"
	lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return errkind.NewCreateConfigurationError(path, err)
	}
	defer func() {
		lock.Close()
		os.Remove(lockPath)
	}()

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errkind.NewCreateConfigurationError(path, err)
	}
	return nil
}
