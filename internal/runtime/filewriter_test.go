package runtime_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schevalier/flocker/internal/runtime"
)

func TestFileConfigWriterWritesAndReleasesLock(t *testing.T) {
	w := runtime.FileConfigWriter{}
	path := filepath.Join(t.TempDir(), "applications.yaml")

	require.NoError(t, w.Write(path, []byte("version: 1\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(data))

	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err), "lock file must be removed after write")
}

func TestFileConfigWriterFailsOnHeldLock(t *testing.T) {
	w := runtime.FileConfigWriter{}
	path := filepath.Join(t.TempDir(), "applications.yaml")

	lock, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	defer lock.Close()

	err = w.Write(path, []byte("version: 1\n"))
	assert.Error(t, err)
}
