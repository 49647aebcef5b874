package tags

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasKnownArtistFalseForUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-audio.mp3")
	require.NoError(t, os.WriteFile(path, []byte("definitely not an mp3"), 0o644))

	known, err := HasKnownArtist(path)
	require.NoError(t, err)
	assert.False(t, known)
}

func TestHasKnownArtistErrorsOnMissingFile(t *testing.T) {
	_, err := HasKnownArtist(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.Error(t, err)
}
