package services

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const MaxMediaBytes = 10 << 20

var allowedMedia = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "application/pdf"}

// MediaStore writes uploads under a directory, one subdirectory per tenant.
type MediaStore struct {
	dir string
}

func NewMediaStore(dir string) *MediaStore {
	return &MediaStore{dir: dir}
}

type StoredFile struct {
	StoredName string
	MimeType   string
	Size       int64
}

// Save sniffs the content type, rejects anything not allowed or over
// MaxMediaBytes, and writes the file under a random name.
func (m *MediaStore) Save(tenantID uuid.UUID, r io.Reader) (*StoredFile, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxMediaBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if len(data) > MaxMediaBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, MaxMediaBytes)
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedMedia...) {
		return nil, fmt.Errorf("%w: file type %s is not allowed", ErrInvalidInput, mtype.String())
	}

	name := uuid.NewString() + mtype.Extension()
	dir := filepath.Join(m.dir, tenantID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if err := writeFile(filepath.Join(dir, name), data); err != nil {
		return nil, err
	}
	return &StoredFile{StoredName: name, MimeType: mtype.String(), Size: int64(len(data))}, nil
}

func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Remove deletes the stored file; a missing file is not an error.
func (m *MediaStore) Remove(tenantID uuid.UUID, storedName string) error {
	if strings.ContainsAny(storedName, `/\`) {
		return fmt.Errorf("%w: bad file name", ErrInvalidInput)
	}
	err := os.Remove(filepath.Join(m.dir, tenantID.String(), storedName))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Path resolves a stored file for serving.
func (m *MediaStore) Path(tenantID uuid.UUID, storedName string) string {
	return filepath.Join(m.dir, tenantID.String(), filepath.Base(storedName))
}
