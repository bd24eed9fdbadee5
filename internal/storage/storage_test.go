package storage

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T) *StorageFS {
	t.Helper()
	fs, err := NewStorageFS(log.New("test"), t.TempDir(), "http://localhost:8080", []string{"announcements", "gallery"})
	require.NoError(t, err)
	return fs
}

func TestFSPutAndDelete(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()

	url, err := fs.Put(ctx, "gallery", "2024/cleanup.jpg", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/media/gallery/2024/cleanup.jpg", url)

	b, err := os.ReadFile(filepath.Join(fs.Root, "gallery", "2024", "cleanup.jpg"))
	require.NoError(t, err)
	require.Equal(t, "jpeg", string(b))

	require.NoError(t, fs.Delete(ctx, "gallery", "2024/cleanup.jpg"))
	_, err = os.Stat(filepath.Join(fs.Root, "gallery", "2024", "cleanup.jpg"))
	require.True(t, os.IsNotExist(err))
}

func TestFSPutNeverOverwrites(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()

	_, err := fs.Put(ctx, "announcements", "flyer.png", []byte("first"), "image/png")
	require.NoError(t, err)
	_, err = fs.Put(ctx, "announcements", "flyer.png", []byte("second"), "image/png")
	require.ErrorIs(t, err, ErrObjectExists)

	b, err := os.ReadFile(filepath.Join(fs.Root, "announcements", "flyer.png"))
	require.NoError(t, err)
	require.Equal(t, "first", string(b))
}

func TestFSRejectsBadTargets(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()

	_, err := fs.Put(ctx, "secrets", "a.png", []byte("x"), "")
	require.ErrorIs(t, err, ErrBucketNotAllowed)

	for _, name := range []string{"", "../escape.png", "/etc/passwd", "a/../../b", `a\b`, "."} {
		_, err := fs.Put(ctx, "gallery", name, []byte("x"), "")
		require.ErrorIs(t, err, ErrInvalidPath, name)
	}
}

func TestCleanPath(t *testing.T) {
	p, err := CleanPath(" events/2024//poster.png ")
	require.NoError(t, err)
	require.Equal(t, "events/2024/poster.png", p)

	// Dots inside a name are not traversal
	for _, name := range []string{"v1..2.png", "releases/..hidden", "a.../b"} {
		p, err := CleanPath(name)
		require.NoError(t, err, name)
		require.Equal(t, name, p)
	}
}

func TestURLEscapesSegments(t *testing.T) {
	fs := newTestFS(t)
	ctx := context.Background()

	url, err := fs.Put(ctx, "gallery", "liga finals/#1 & 2.png", []byte("x"), "image/png")
	require.NoError(t, err)
	require.Equal(t, fs.BaseURL+"/media/gallery/liga%20finals/%231%20&%202.png", url)

	url, err = fs.Put(ctx, "gallery", "v1..2.png", []byte("x"), "image/png")
	require.NoError(t, err)
	require.Equal(t, fs.BaseURL+"/media/gallery/v1..2.png", url)

	gcs := &StorageGCS{}
	require.Equal(t, "https://storage.googleapis.com/gallery/liga%20finals/%231.png", gcs.URL("gallery", "liga finals/#1.png"))
}

func TestDecodePayload(t *testing.T) {
	raw := []byte("hello")
	enc := base64.StdEncoding.EncodeToString(raw)

	data, ct, err := DecodePayload(enc, "")
	require.NoError(t, err)
	require.Equal(t, raw, data)
	require.Equal(t, "application/octet-stream", ct)

	data, ct, err = DecodePayload("data:image/png;base64,"+enc, "")
	require.NoError(t, err)
	require.Equal(t, raw, data)
	require.Equal(t, "image/png", ct)

	_, ct, err = DecodePayload("data:image/png;base64,"+enc, "image/webp")
	require.NoError(t, err)
	require.Equal(t, "image/webp", ct)

	_, _, err = DecodePayload("", "")
	require.ErrorIs(t, err, ErrEmptyPayload)
	_, _, err = DecodePayload("not base64!!", "")
	require.ErrorIs(t, err, ErrInvalidPayload)
	_, _, err = DecodePayload("data:text/plain,hello", "")
	require.ErrorIs(t, err, ErrInvalidPayload)

	big := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("a", MaxObjectSize+1)))
	_, _, err = DecodePayload(big, "")
	require.ErrorIs(t, err, ErrPayloadTooLarge)
}
