package services

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func TestMediaStoreSave(t *testing.T) {
	dir := t.TempDir()
	store := NewMediaStore(dir)
	tenant := uuid.New()

	stored, err := store.Save(tenant, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", stored.MimeType)
	assert.Equal(t, int64(len(pngHeader)), stored.Size)
	assert.True(t, strings.HasSuffix(stored.StoredName, ".png"))

	path := store.Path(tenant, stored.StoredName)
	assert.Equal(t, filepath.Join(dir, tenant.String(), stored.StoredName), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	pdf, err := store.Save(tenant, strings.NewReader("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.MimeType)

	require.NoError(t, store.Remove(tenant, stored.StoredName))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Remove(tenant, stored.StoredName), "removing twice is fine")
}

func TestMediaStoreRejects(t *testing.T) {
	store := NewMediaStore(t.TempDir())
	tenant := uuid.New()

	_, err := store.Save(tenant, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = store.Save(tenant, strings.NewReader("just some notes"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	big := append(append([]byte{}, pngHeader...), make([]byte, MaxMediaBytes)...)
	_, err = store.Save(tenant, bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.ErrorIs(t, store.Remove(tenant, "../escape.png"), ErrInvalidInput)
	assert.Equal(t, filepath.Join(store.dir, tenant.String(), "passwd"), store.Path(tenant, "../../etc/passwd"))
}
