package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schevalier/flocker/internal/logging"
)

func TestNewCarriesStaticFields(t *testing.T) {
	entry := logging.New(logging.Options{Namespace: "flocker", Hostname: "n1"})
	assert.Equal(t, "flocker", entry.Data["namespace"])
	assert.Equal(t, "n1", entry.Data["hostname"])
	assert.Equal(t, false, entry.Data["debug"])
}

func TestNewDebugWritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "development.log")
	entry := logging.New(logging.Options{Debug: true, LogFile: path})
	entry.Error("boom")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "boom")
}
