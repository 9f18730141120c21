package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCreatesDirectoriesAndFile(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "gdelt-20260826", "good")
	s := NewFileSink(prefix, "part-00000")

	require.NoError(t, s.Write([]string{"US SUBJ1 3", "FR ENV 1"}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "US SUBJ1 3\nFR ENV 1\n", string(data))
}

func TestWriteEmptyReport(t *testing.T) {
	s := NewFileSink(t.TempDir(), "part-00000")
	require.NoError(t, s.Write(nil))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Empty(t, data)
}
