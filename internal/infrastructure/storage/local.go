// Package storage keeps uploaded product images on local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

var ErrUnsupportedFormat = errors.New("storage: unsupported image format")

const (
	defaultMaxWidth = 800
	jpegQuality     = 80
)

// LocalImageStore re-encodes uploads as JPEG, scaled down to MaxWidth.
type LocalImageStore struct {
	dir       string
	publicURL string
	maxWidth  uint
}

// NewLocalImageStore writes into dir and builds URLs under publicURL (e.g. "/uploads").
func NewLocalImageStore(dir, publicURL string, maxWidth uint) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	if maxWidth == 0 {
		maxWidth = defaultMaxWidth
	}
	return &LocalImageStore{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxWidth:  maxWidth,
	}, nil
}

func (s *LocalImageStore) Dir() string { return s.dir }

func (s *LocalImageStore) Put(ctx context.Context, filename string, r io.Reader) (string, error) {
	var (
		img image.Image
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		img, err = png.Decode(r)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(r)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return "", fmt.Errorf("storage: decode: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if uint(img.Bounds().Dx()) > s.maxWidth {
		img = resize.Resize(s.maxWidth, 0, img, resize.Lanczos3)
	}

	name := uuid.NewString() + ".jpg"
	out, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("storage: create: %w", err)
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = out.Close()
		_ = os.Remove(out.Name())
		return "", fmt.Errorf("storage: encode: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("storage: close: %w", err)
	}
	return s.publicURL + "/" + name, nil
}
