package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStaged(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readEntry(t *testing.T, r *zip.ReadCloser, name string) string {
	t.Helper()
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("entry %s not found", name)
	return ""
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "shop-config-1.4.0-dev.zip", Filename("shop-config", "1.4.0", "dev", "zip"))
}

func TestPack(t *testing.T) {
	src := t.TempDir()
	writeStaged(t, src, "app.conf", "host=db")
	writeStaged(t, src, filepath.Join("conf", "db.conf"), "pool=10")

	dst := filepath.Join(t.TempDir(), "lib", "shop-config-1.0.0-dev.zip")
	require.NoError(t, Pack(src, dst))

	r, err := zip.OpenReader(dst)
	require.NoError(t, err)
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"app.conf", "conf/db.conf"}, names)
	assert.Equal(t, "host=db", readEntry(t, r, "app.conf"))
	assert.Equal(t, "pool=10", readEntry(t, r, "conf/db.conf"))
}

func TestPack_Deterministic(t *testing.T) {
	src := t.TempDir()
	writeStaged(t, src, "b.conf", "b=2")
	writeStaged(t, src, "a.conf", "a=1")
	writeStaged(t, src, filepath.Join("sub", "c.conf"), "c=3")

	dir := t.TempDir()
	first := filepath.Join(dir, "one.zip")
	second := filepath.Join(dir, "two.zip")

	require.NoError(t, Pack(src, first))
	require.NoError(t, Pack(src, second))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPack_FixedTimestamps(t *testing.T) {
	src := t.TempDir()
	writeStaged(t, src, "app.conf", "a=1")

	dst := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, Pack(src, dst))

	r, err := zip.OpenReader(dst)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.File, 1)
	assert.EqualValues(t, 0, r.File[0].Modified.Unix())
}

func TestPack_NoTempFileLeftBehind(t *testing.T) {
	src := t.TempDir()
	writeStaged(t, src, "app.conf", "a=1")

	dir := t.TempDir()
	dst := filepath.Join(dir, "out.zip")
	require.NoError(t, Pack(src, dst))

	assert.NoFileExists(t, dst+".tmp")
}

func TestPack_MissingSource(t *testing.T) {
	err := Pack(filepath.Join(t.TempDir(), "absent"), filepath.Join(t.TempDir(), "out.zip"))
	assert.Error(t, err)
}

func TestPack_EmptyTree(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "empty.zip")
	require.NoError(t, Pack(t.TempDir(), dst))

	r, err := zip.OpenReader(dst)
	require.NoError(t, err)
	defer r.Close()
	assert.Empty(t, r.File)
}
