package uploads_test

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"staffdir/internal/uploads"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a *multipart.FileHeader the way Fiber would hand it
// to a handler.
func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("f_Image", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	return form.File["f_Image"][0]
}

func TestStore_Save(t *testing.T) {
	dir := t.TempDir()
	store, err := uploads.NewStore(dir)
	require.NoError(t, err)

	ref, err := store.Save(fileHeader(t, "avatar.PNG", "fake-png-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, uploads.URLPrefix+"/"))
	assert.True(t, strings.HasSuffix(ref, ".png"), "extension should be preserved lowercased")

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(ref, uploads.URLPrefix+"/")))
	require.NoError(t, err)
	assert.Equal(t, "fake-png-bytes", string(data))

	// Two saves of the same filename must not collide.
	ref2, err := store.Save(fileHeader(t, "avatar.PNG", "other"))
	require.NoError(t, err)
	assert.NotEqual(t, ref, ref2)
}

func TestStore_Remove(t *testing.T) {
	dir := t.TempDir()
	store, err := uploads.NewStore(dir)
	require.NoError(t, err)

	ref, err := store.Save(fileHeader(t, "a.jpg", "x"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(ref))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// A second removal of the same reference is not an error.
	assert.NoError(t, store.Remove(ref))

	// Nor is a reference that never existed, or an empty one.
	assert.NoError(t, store.Remove("/uploads/never-was-here.png"))
	assert.NoError(t, store.Remove(""))
}

func TestStore_RemoveStaysInsideDirectory(t *testing.T) {
	parent := t.TempDir()
	outside := filepath.Join(parent, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o600))

	store, err := uploads.NewStore(filepath.Join(parent, "uploads"))
	require.NoError(t, err)

	assert.NoError(t, store.Remove("/uploads/../secret.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err, "file outside the upload directory must survive")
}
