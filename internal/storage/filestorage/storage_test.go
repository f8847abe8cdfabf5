package storage_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	appstorage "pagecraft/internal/storage"
	storage "pagecraft/internal/storage/filestorage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFile(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	file.Close()

	return header
}

func TestLocalFileStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	fs, err := storage.NewLocalFileStorage(dir, "http://localhost:8080/uploads", 1<<20)
	require.NoError(t, err)

	header := multipartFile(t, "photo.png", "png-bytes")

	relPath, size, err := fs.Save(context.Background(), header, "pages")
	require.NoError(t, err)
	assert.Equal(t, int64(len("png-bytes")), size)
	assert.True(t, strings.HasPrefix(relPath, "pages/photo-"), "stored name keeps the base: %s", relPath)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(relPath)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, fs.Delete(context.Background(), relPath))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(relPath)))
	assert.True(t, os.IsNotExist(err))

	// deleting again is not an error: remote deletes are best-effort
	assert.NoError(t, fs.Delete(context.Background(), relPath))
}

func TestLocalFileStorage_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	fs, err := storage.NewLocalFileStorage(dir, "http://x/uploads", 0)
	require.NoError(t, err)

	first, _, err := fs.Save(context.Background(), multipartFile(t, "logo.png", "a"), "pages")
	require.NoError(t, err)
	second, _, err := fs.Save(context.Background(), multipartFile(t, "logo.png", "b"), "pages")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalFileStorage_MaxSize(t *testing.T) {
	dir := t.TempDir()
	fs, err := storage.NewLocalFileStorage(dir, "http://x/uploads", 4)
	require.NoError(t, err)

	_, _, err = fs.Save(context.Background(), multipartFile(t, "big.bin", "way too large"), "pages")
	assert.ErrorIs(t, err, appstorage.ErrFileTooLarge)
}
