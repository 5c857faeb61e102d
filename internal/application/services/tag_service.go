package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// TagService handles tag operations
type TagService struct {
	tagRepo     ports.TagRepository
	folderRepo  ports.FolderRepository
	taskRepo    ports.TaskRepository
	taskTagRepo ports.TaskTagRepository
	logger      *logger.Logger
}

// NewTagService creates a new tag service
func NewTagService(
	tagRepo ports.TagRepository,
	folderRepo ports.FolderRepository,
	taskRepo ports.TaskRepository,
	taskTagRepo ports.TaskTagRepository,
	logger *logger.Logger,
) *TagService {
	return &TagService{
		tagRepo:     tagRepo,
		folderRepo:  folderRepo,
		taskRepo:    taskRepo,
		taskTagRepo: taskTagRepo,
		logger:      logger,
	}
}

func (s *TagService) ListTags(ctx context.Context, userID int64) ([]*entities.Tag, error) {
	return s.tagRepo.ListByUser(ctx, userID)
}

func (s *TagService) GetTag(ctx context.Context, userID, tagID int64) (*entities.Tag, error) {
	return s.ownedTag(ctx, userID, tagID)
}

func (s *TagService) CreateTag(ctx context.Context, userID int64, req ports.CreateTagRequest) (*entities.Tag, error) {
	if err := validateTagName(req.Name); err != nil {
		return nil, err
	}

	if err := s.ensureUniqueName(ctx, userID, req.Name, 0); err != nil {
		return nil, err
	}

	folderID := req.FolderID
	if folderID != nil && *folderID == 0 {
		folderID = nil
	}
	if err := s.validateFolder(ctx, userID, folderID); err != nil {
		return nil, err
	}

	color := entities.DefaultTagColor
	if req.Color != nil && *req.Color != "" {
		color = *req.Color
	}

	tag := &entities.Tag{
		Name:     req.Name,
		Color:    &color,
		UserID:   userID,
		FolderID: folderID,
	}

	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(userID, "create_tag", map[string]interface{}{"tag_id": tag.ID})

	return tag, nil
}

// UpdateTag applies a partial update; an explicit null folderId detaches the tag
func (s *TagService) UpdateTag(ctx context.Context, userID, tagID int64, req ports.UpdateTagRequest) (*entities.Tag, error) {
	tag, err := s.ownedTag(ctx, userID, tagID)
	if err != nil {
		return nil, err
	}

	if req.Name.Set {
		name := req.Name.Value
		if req.Name.Null {
			name = ""
		}
		if err := validateTagName(name); err != nil {
			return nil, err
		}
		if name != tag.Name {
			if err := s.ensureUniqueName(ctx, userID, name, tag.ID); err != nil {
				return nil, err
			}
		}
		tag.Name = name
	}

	req.Color.Apply(&tag.Color)

	if req.Pinned.Set {
		tag.Pinned = req.Pinned.Value
	}

	if req.FolderID.Set {
		folderID := req.FolderID.Ptr()
		if folderID != nil && *folderID == 0 {
			folderID = nil
		}
		if err := s.validateFolder(ctx, userID, folderID); err != nil {
			return nil, err
		}
		tag.FolderID = folderID
	}

	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(userID, "update_tag", map[string]interface{}{"tag_id": tag.ID})

	return tag, nil
}

// DeleteTag clears every task reference to the tag before deleting it
func (s *TagService) DeleteTag(ctx context.Context, userID, tagID int64) error {
	tag, err := s.ownedTag(ctx, userID, tagID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.ClearLegacyTag(ctx, tag.ID); err != nil {
		return err
	}

	if err := s.taskTagRepo.DeleteByTag(ctx, tag.ID); err != nil {
		return err
	}

	if err := s.tagRepo.Delete(ctx, tag.ID); err != nil {
		return err
	}

	s.logger.LogUserAction(userID, "delete_tag", map[string]interface{}{"tag_id": tag.ID})

	return nil
}

func (s *TagService) ownedTag(ctx context.Context, userID, tagID int64) (*entities.Tag, error) {
	tag, err := s.tagRepo.GetByID(ctx, tagID)
	if err != nil {
		return nil, err
	}

	if !entities.BelongsTo(tag, userID) {
		return nil, entities.ErrTagNotFound
	}

	return tag, nil
}

// ensureUniqueName fails when another of the user's tags, other than selfID, has name
func (s *TagService) ensureUniqueName(ctx context.Context, userID int64, name string, selfID int64) error {
	existing, err := s.tagRepo.GetByName(ctx, userID, name)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil
		}
		return err
	}

	if existing.ID != selfID {
		return entities.Conflict("Tag with this name already exists")
	}

	return nil
}

func (s *TagService) validateFolder(ctx context.Context, userID int64, folderID *int64) error {
	if folderID == nil {
		return nil
	}

	folder, err := s.folderRepo.GetByID(ctx, *folderID)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return entities.ErrInvalidFolder
		}
		return err
	}

	if !entities.BelongsTo(folder, userID) {
		return entities.ErrInvalidFolder
	}

	return nil
}

func validateTagName(name string) error {
	if strings.TrimSpace(name) == "" {
		return entities.Validation("Tag name is required")
	}
	if utf8.RuneCountInString(name) > entities.MaxTagNameLength {
		return entities.Validation("Tag name must be %d characters or less", entities.MaxTagNameLength)
	}
	return nil
}
