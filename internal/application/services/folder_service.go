package services

import (
	"context"
	"errors"
	"strings"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// FolderService handles folder operations
type FolderService struct {
	folderRepo ports.FolderRepository
	tagRepo    ports.TagRepository
	logger     *logger.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(folderRepo ports.FolderRepository, tagRepo ports.TagRepository, logger *logger.Logger) *FolderService {
	return &FolderService{
		folderRepo: folderRepo,
		tagRepo:    tagRepo,
		logger:     logger,
	}
}

func (s *FolderService) ListFolders(ctx context.Context, userID int64) ([]*entities.Folder, error) {
	return s.folderRepo.ListByUser(ctx, userID)
}

func (s *FolderService) GetFolder(ctx context.Context, userID, folderID int64) (*entities.Folder, error) {
	return s.ownedFolder(ctx, userID, folderID)
}

func (s *FolderService) CreateFolder(ctx context.Context, userID int64, req ports.CreateFolderRequest) (*entities.Folder, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, entities.Validation("Folder name is required")
	}

	if err := s.ensureUniqueName(ctx, userID, req.Name, 0); err != nil {
		return nil, err
	}

	color := entities.DefaultFolderColor
	if req.Color != nil && *req.Color != "" {
		color = *req.Color
	}

	folder := &entities.Folder{
		Name:   req.Name,
		Color:  &color,
		UserID: userID,
	}
	if req.Pinned != nil {
		folder.Pinned = *req.Pinned
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(userID, "create_folder", map[string]interface{}{"folder_id": folder.ID})

	return folder, nil
}

func (s *FolderService) UpdateFolder(ctx context.Context, userID, folderID int64, req ports.UpdateFolderRequest) (*entities.Folder, error) {
	folder, err := s.ownedFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}

	if req.Name.Set {
		if req.Name.Null || strings.TrimSpace(req.Name.Value) == "" {
			return nil, entities.Validation("Folder name is required")
		}
		if err := s.ensureUniqueName(ctx, userID, req.Name.Value, folder.ID); err != nil {
			return nil, err
		}
		folder.Name = req.Name.Value
	}

	req.Color.Apply(&folder.Color)

	if req.Pinned.Set {
		folder.Pinned = req.Pinned.Value
	}

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(userID, "update_folder", map[string]interface{}{"folder_id": folder.ID})

	return folder, nil
}

// DeleteFolder detaches member tags, then deletes the folder
func (s *FolderService) DeleteFolder(ctx context.Context, userID, folderID int64) error {
	folder, err := s.ownedFolder(ctx, userID, folderID)
	if err != nil {
		return err
	}

	if err := s.tagRepo.DetachFolder(ctx, folder.ID); err != nil {
		return err
	}

	if err := s.folderRepo.Delete(ctx, folder.ID); err != nil {
		return err
	}

	s.logger.LogUserAction(userID, "delete_folder", map[string]interface{}{"folder_id": folder.ID})

	return nil
}

func (s *FolderService) ownedFolder(ctx context.Context, userID, folderID int64) (*entities.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if !entities.BelongsTo(folder, userID) {
		return nil, entities.ErrFolderNotFound
	}

	return folder, nil
}

func (s *FolderService) ensureUniqueName(ctx context.Context, userID int64, name string, selfID int64) error {
	existing, err := s.folderRepo.GetByName(ctx, userID, name)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil
		}
		return err
	}

	if existing.ID != selfID {
		return entities.Conflict("Folder with this name already exists")
	}

	return nil
}
