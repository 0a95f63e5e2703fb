package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPutScalesAndReencodes(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalImageStore(dir, "/uploads/", 100)
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "burger.PNG", bytes.NewReader(pngBytes(t, 400, 200)))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/"))
	require.True(t, strings.HasSuffix(url, ".jpg"))

	f, err := os.Open(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestPutKeepsSmallImages(t *testing.T) {
	s, err := NewLocalImageStore(t.TempDir(), "/uploads", 0)
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "cola.png", bytes.NewReader(pngBytes(t, 64, 32)))
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(s.Dir(), filepath.Base(url)))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
}

func TestPutRejectsUnknownFormat(t *testing.T) {
	s, err := NewLocalImageStore(t.TempDir(), "/uploads", 0)
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "menu.gif", bytes.NewReader([]byte("GIF89a")))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
