package security

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template")
	require.NoError(t, os.WriteFile(path, nil, 0o640))
	require.NoError(t, os.Chmod(path, 0o640))

	d, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, KindFile, d.Kind)
	assert.Equal(t, uint32(0o640), d.Mode)
	assert.Equal(t, uint32(os.Getuid()), d.UID)
	assert.Equal(t, uint32(0o750), d.FileMode(true))
	assert.Equal(t, uint32(0o640), d.FileMode(false))
}

func TestLoadDirectoryTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o755))

	d, err := Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, KindDirectory, d.Kind)
	assert.Equal(t, uint32(0o755), d.FileMode(true))
	assert.Equal(t, uint32(0o644), d.FileMode(false))
}

func TestLoadFallsBack(t *testing.T) {
	d, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Equal(t, KindDirectory, d.Kind)

	d, err = Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, uint32(0o755), d.Mode)
}
