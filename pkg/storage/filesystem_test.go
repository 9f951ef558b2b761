package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, field, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

func TestSaveUploadWritesUnderCategory(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, 1024)
	require.NoError(t, err)

	fh := fileHeader(t, "files", "form.pdf", "application/pdf", []byte("%PDF-1.4 test"))
	stored, err := store.SaveUpload(CategoryRequests, fh, []string{"application/pdf"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.Path, "requests/"))
	assert.True(t, strings.HasSuffix(stored.Path, ".pdf"))
	assert.Equal(t, "form.pdf", stored.OriginalName)
	data, err := os.ReadFile(store.Path(stored.Path))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(data))

	require.NoError(t, store.Delete(stored.Path))
	_, err = os.Stat(store.Path(stored.Path))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveUploadRejectsTypeAndSize(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), 8)
	require.NoError(t, err)

	big := fileHeader(t, "photo", "big.png", "image/png", bytes.Repeat([]byte("x"), 64))
	_, err = store.SaveUpload(CategoryPhotos, big, ImageMIMEs)
	assert.ErrorIs(t, err, ErrTooLarge)

	store, err = NewLocalStorage(t.TempDir(), 1024)
	require.NoError(t, err)
	text := fileHeader(t, "photo", "notes.txt", "", []byte("plain text body"))
	_, err = store.SaveUpload(CategoryPhotos, text, ImageMIMEs)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestOpenRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), 0)
	require.NoError(t, err)

	_, err = store.Open("../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
	_, err = store.Open("/etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestSaveUploadSniffsInsteadOfTrustingHeader(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), 1024)
	require.NoError(t, err)

	spoofed := fileHeader(t, "photo", "evil.html", "image/png", []byte("<html><script>alert(document.cookie)</script></html>"))
	_, err = store.SaveUpload(CategoryPhotos, spoofed, ImageMIMEs)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 16)...)
	renamed := fileHeader(t, "photo", "avatar.html", "text/html", png)
	stored, err := store.SaveUpload(CategoryPhotos, renamed, ImageMIMEs)
	require.NoError(t, err)
	assert.Equal(t, "image/png", stored.ContentType)
	assert.True(t, strings.HasSuffix(stored.Path, ".png"))
	assert.Equal(t, "image/png", ContentTypeOf(store.Path(stored.Path)))
}

func TestSaveUploadAcceptsOfficeDocumentInZip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), 1024)
	require.NoError(t, err)

	docx := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	zipped := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0}, 32)...)
	stored, err := store.SaveUpload(CategoryRequests, fileHeader(t, "files", "form.docx", docx, zipped), []string{docx})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored.Path, ".docx"))

	_, err = store.SaveUpload(CategoryRequests, fileHeader(t, "files", "form.docx", "image/png", zipped), []string{docx})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestContentTypeOfUnknownExtension(t *testing.T) {
	assert.Equal(t, "application/octet-stream", ContentTypeOf("photos/legacy.html"))
	assert.Equal(t, "application/pdf", ContentTypeOf("requests/form.PDF"))
}
