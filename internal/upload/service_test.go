package upload

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

type fakeStorage struct {
	uploadedName string
}

func (f *fakeStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	f.uploadedName = name
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	return "https://files.test/" + name, nil
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestStoreEvidenceClassifiesImage(t *testing.T) {
	storage := &fakeStorage{}
	service := NewService(storage, 1, zerolog.New(io.Discard))

	response, err := service.StoreEvidence(context.Background(), fileHeader(t, "photo proof.png", pngHeader))
	require.NoError(t, err)
	require.Equal(t, models.EvidenceTypeImage, response.Type)
	require.Equal(t, "https://files.test/photo-proof.png", response.URL)
	require.Equal(t, "photo-proof.png", storage.uploadedName)
}

func TestStoreEvidenceClassifiesTextAsDocument(t *testing.T) {
	service := NewService(&fakeStorage{}, 1, zerolog.New(io.Discard))

	response, err := service.StoreEvidence(context.Background(), fileHeader(t, "notes.txt", []byte("we finished the task first")))
	require.NoError(t, err)
	require.Equal(t, models.EvidenceTypeDocument, response.Type)
}

func TestStoreEvidenceRejectsUnknownType(t *testing.T) {
	service := NewService(&fakeStorage{}, 1, zerolog.New(io.Discard))

	_, err := service.StoreEvidence(context.Background(), fileHeader(t, "blob.bin", []byte{0x00, 0x01, 0x02, 0x03}))
	require.ErrorIs(t, err, ErrTypeNotAllowed)
}

func TestStoreEvidenceRejectsMissingFile(t *testing.T) {
	service := NewService(&fakeStorage{}, 1, zerolog.New(io.Discard))

	_, err := service.StoreEvidence(context.Background(), nil)
	require.ErrorIs(t, err, ErrFileRequired)
}

func TestStoreEvidenceRejectsOversizedFile(t *testing.T) {
	service := NewService(&fakeStorage{}, 1, zerolog.New(io.Discard))

	oversized := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0xff}, 1<<20)...)
	_, err := service.StoreEvidence(context.Background(), fileHeader(t, "huge.png", oversized))
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestClassifyEvidence(t *testing.T) {
	cases := []struct {
		mime    string
		want    string
		allowed bool
	}{
		{"image/png", models.EvidenceTypeImage, true},
		{"image/jpeg", models.EvidenceTypeImage, true},
		{"video/mp4", models.EvidenceTypeVideo, true},
		{"application/pdf", models.EvidenceTypeDocument, true},
		{"text/plain; charset=utf-8", models.EvidenceTypeDocument, true},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", models.EvidenceTypeDocument, true},
		{"application/zip", "", false},
		{"application/octet-stream", "", false},
	}

	for _, tc := range cases {
		got, ok := classifyEvidence(tc.mime)
		require.Equal(t, tc.allowed, ok, tc.mime)
		require.Equal(t, tc.want, got, tc.mime)
	}
}

func TestSanitizeFileName(t *testing.T) {
	require.Equal(t, "report.pdf", sanitizeFileName("report.pdf"))
	require.Equal(t, "my-photo.png", sanitizeFileName("  my photo.png "))
	require.Equal(t, "passwd", sanitizeFileName("../../etc/passwd"))
	require.Equal(t, "evidence", sanitizeFileName(""))
}
