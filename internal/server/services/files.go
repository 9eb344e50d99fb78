package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/filex"
	"github.com/dmitrijs2005/movieapi/internal/server/storage"
	"github.com/google/uuid"
)

var allowedPosterTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

// Upload is an incoming poster file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileService stores poster images in a blob store under generated names.
type FileService struct {
	store storage.BlobStore
	options
}

func NewFileService(store storage.BlobStore, opts ...Option) *FileService {
	return &FileService{store: store, options: buildOptions(opts)}
}

// Upload checks the file and stores it as "<uuid>_<base name>". It returns
// the stored name.
func (s *FileService) Upload(ctx context.Context, u Upload) (string, error) {
	if u.Body == nil || u.Size == 0 {
		return "", common.ErrEmptyFile
	}

	ct := u.ContentType
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mt
	}
	if !allowedPosterTypes[ct] {
		return "", fmt.Errorf("%w: %s", common.ErrUnsupportedFileType, u.ContentType)
	}

	base := filepath.Base(strings.ReplaceAll(u.Filename, `\`, "/"))
	name := uuid.NewString() + "_" + base
	if !filex.IsPlainName(base) {
		name = uuid.NewString()
	}

	if err := s.store.Put(ctx, name, u.Body, u.Size, ct); err != nil {
		return "", fmt.Errorf("error storing file: %w", err)
	}
	s.logger.Debug(ctx, "poster stored", "name", name, "size", u.Size)
	return name, nil
}

// Open returns the stored file and its content type.
func (s *FileService) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	rc, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, "", err
	}
	return rc, ContentTypeFor(name), nil
}

// Remove deletes a stored file. Removing a missing file is not an error.
func (s *FileService) Remove(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	return s.store.Delete(ctx, name)
}

// ContentTypeFor maps a file extension to the served content type.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	}
	return "application/octet-stream"
}
