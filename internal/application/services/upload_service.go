package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/config"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// allowedImageExtensions maps accepted file extensions to the decoder format they must carry
var allowedImageExtensions = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
	".webp": "webp",
}

// TokenValidator resolves a bearer token to a user id
type TokenValidator interface {
	ValidateToken(tokenString string) (int64, error)
}

// UploadService stores task images and guards access to them
type UploadService struct {
	taskRepo ports.TaskRepository
	store    ports.ImageStore
	tokens   TokenValidator
	maxBytes int64
	logger   *logger.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(taskRepo ports.TaskRepository, store ports.ImageStore, tokens TokenValidator, cfg config.UploadConfig, logger *logger.Logger) *UploadService {
	return &UploadService{
		taskRepo: taskRepo,
		store:    store,
		tokens:   tokens,
		maxBytes: cfg.MaxBytes,
		logger:   logger,
	}
}

// Upload validates and stores one image. It does not touch the task row;
// clients attach the returned imageUrl through the task update.
func (s *UploadService) Upload(ctx context.Context, req ports.UploadRequest) (*ports.UploadResponse, error) {
	if req.TaskID != nil {
		task, err := s.taskRepo.GetByID(ctx, *req.TaskID)
		if err != nil {
			return nil, err
		}
		if !entities.BelongsTo(task, req.UserID) {
			return nil, entities.ErrTaskNotFound
		}
	}

	if req.Content == nil {
		return nil, entities.Validation("No image provided")
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	format, ok := allowedImageExtensions[ext]
	if !ok {
		return nil, entities.Validation("Invalid file type")
	}

	if s.maxBytes > 0 && req.Size > s.maxBytes {
		return nil, entities.Validation("File too large")
	}

	data, err := s.readLimited(req.Content)
	if err != nil {
		return nil, err
	}

	_, decoded, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || decoded != format {
		return nil, entities.Validation("Invalid image file")
	}

	filename := uuid.NewString() + ext
	if err := s.store.Save(ctx, filename, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	s.logger.LogUserAction(req.UserID, "upload_image", map[string]interface{}{"filename": filename, "bytes": len(data)})

	return &ports.UploadResponse{
		Filename: filename,
		ImageURL: entities.ImageURL(filename),
	}, nil
}

// Resolve checks the token, then that one of the caller's tasks references
// filename, then that the file exists.
func (s *UploadService) Resolve(ctx context.Context, token, filename string) (string, error) {
	userID, err := s.tokens.ValidateToken(token)
	if err != nil {
		return "", err
	}

	if !entities.ValidFilename(filename) {
		return "", entities.ErrImageNotFound
	}

	owned, err := s.taskRepo.HasImage(ctx, userID, entities.ImageRefs(filename))
	if err != nil {
		return "", err
	}
	if !owned {
		s.logger.LogSecurityEvent("image_access_denied", userID, "", map[string]interface{}{"filename": filename})
		return "", entities.Forbidden("Access denied")
	}

	return s.store.Path(filename)
}

func (s *UploadService) readLimited(r io.Reader) ([]byte, error) {
	if s.maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, entities.Validation("File too large")
	}

	return data, nil
}
