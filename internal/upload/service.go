package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/gincana-dev/gincana-go-api/internal/dto"
	"github.com/gincana-dev/gincana-go-api/internal/models"
)

var (
	// ErrFileRequired indicates no file was attached to the request.
	ErrFileRequired = errors.New("file is required")
	// ErrFileTooLarge indicates the payload exceeded the configured limit.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrTypeNotAllowed indicates the detected MIME type is not permitted.
	ErrTypeNotAllowed = errors.New("file type not allowed")
)

// FileStorage abstracts the upload destination.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// Service validates evidence attachments and stores them. The returned URL
// and classified evidence type are meant to be folded into a review request.
type Service struct {
	storage FileStorage
	maxSize int64
	logger  zerolog.Logger
}

// NewService constructs the evidence upload service.
func NewService(storage FileStorage, maxSizeMB int, logger zerolog.Logger) *Service {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &Service{
		storage: storage,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		logger:  logger.With().Str("component", "upload_service").Logger(),
	}
}

// StoreEvidence validates and uploads one evidence file.
func (s *Service) StoreEvidence(ctx context.Context, file *multipart.FileHeader) (dto.EvidenceUploadResponse, error) {
	if file == nil {
		return dto.EvidenceUploadResponse{}, ErrFileRequired
	}
	if file.Size > s.maxSize {
		return dto.EvidenceUploadResponse{}, ErrFileTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return dto.EvidenceUploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		return dto.EvidenceUploadResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		return dto.EvidenceUploadResponse{}, ErrFileTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	evidenceType, ok := classifyEvidence(mime.String())
	if !ok {
		return dto.EvidenceUploadResponse{}, ErrTypeNotAllowed
	}

	url, err := s.storage.Upload(ctx, sanitizeFileName(file.Filename), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return dto.EvidenceUploadResponse{}, err
	}

	s.logger.Info().Str("mime", mime.String()).Str("evidence_type", evidenceType).Msg("evidence uploaded")

	return dto.EvidenceUploadResponse{Type: evidenceType, URL: url}, nil
}

// classifyEvidence maps a detected MIME type onto the evidence taxonomy.
// Links never reach this path; clients attach those as plain URLs.
func classifyEvidence(mime string) (string, bool) {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return models.EvidenceTypeImage, true
	case strings.HasPrefix(mime, "video/"):
		return models.EvidenceTypeVideo, true
	case mime == "application/pdf",
		strings.HasPrefix(mime, "text/"),
		strings.HasPrefix(mime, "application/msword"),
		strings.HasPrefix(mime, "application/vnd.openxmlformats-officedocument"):
		return models.EvidenceTypeDocument, true
	}
	return "", false
}

func sanitizeFileName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	if base == "" || base == "." {
		return "evidence"
	}
	return base
}
