package services

import (
	"context"
	"errors"
	"strings"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// TaskService handles task operations and resolves each task's tag set.
// Join rows in task_tags take precedence over the legacy tasks.tagId column.
type TaskService struct {
	taskRepo    ports.TaskRepository
	tagRepo     ports.TagRepository
	taskTagRepo ports.TaskTagRepository
	images      ports.ImageStore
	logger      *logger.Logger
}

// NewTaskService creates a new task service. images may be nil, in which case
// uploaded files are left on disk when their task is deleted.
func NewTaskService(
	taskRepo ports.TaskRepository,
	tagRepo ports.TagRepository,
	taskTagRepo ports.TaskTagRepository,
	images ports.ImageStore,
	logger *logger.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		tagRepo:     tagRepo,
		taskTagRepo: taskTagRepo,
		images:      images,
		logger:      logger,
	}
}

// ListTasks returns every task owned by userID with resolved tags
func (s *TaskService) ListTasks(ctx context.Context, userID int64) ([]*entities.Task, error) {
	tasks, err := s.taskRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.resolveTags(ctx, tasks...); err != nil {
		return nil, err
	}

	return tasks, nil
}

// GetTask returns one owned task with resolved tags
func (s *TaskService) GetTask(ctx context.Context, userID, taskID int64) (*entities.Task, error) {
	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.resolveTags(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// CreateTask creates a new task and its tag associations
func (s *TaskService) CreateTask(ctx context.Context, userID int64, req ports.CreateTaskRequest) (*entities.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, entities.Validation("Title is required")
	}

	tagIDs := req.TagIDs
	if tagIDs == nil && req.TagID != nil && *req.TagID != 0 {
		tagIDs = []int64{*req.TagID}
	}
	tagIDs = uniqueIDs(tagIDs)

	if err := s.validateTags(ctx, userID, tagIDs); err != nil {
		return nil, err
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	task := &entities.Task{
		Title:       req.Title,
		Description: &description,
		DueDate:     blankToNil(req.DueDate),
		DueTime:     blankToNil(req.DueTime),
		Image:       blankToNil(req.Image),
		TagID:       legacyTagID(tagIDs),
		UserID:      userID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	if err := s.taskTagRepo.Add(ctx, task.ID, tagIDs); err != nil {
		return nil, err
	}

	if err := s.resolveTags(ctx, task); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(userID, "create_task", map[string]interface{}{"task_id": task.ID, "tags": len(tagIDs)})

	return task, nil
}

// UpdateTask applies a partial update. A supplied tag list replaces the
// existing associations; it is never merged.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID int64, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title.Set {
		if req.Title.Null || strings.TrimSpace(req.Title.Value) == "" {
			return nil, entities.Validation("Title is required")
		}
		task.Title = req.Title.Value
	}
	req.Description.Apply(&task.Description)
	if req.Completed.Set {
		task.Completed = req.Completed.Value
	}
	if req.DueDate.Set {
		task.DueDate = blankToNil(req.DueDate.Ptr())
	}
	if req.DueTime.Set {
		task.DueTime = blankToNil(req.DueTime.Ptr())
	}
	if req.Image.Set {
		task.Image = blankToNil(req.Image.Ptr())
	}

	var (
		tagIDs      []int64
		replaceTags bool
	)
	switch {
	case req.TagIDs.Set:
		tagIDs, replaceTags = uniqueIDs(req.TagIDs.Value), true
	case req.TagID.Set && !req.TagID.Null:
		tagIDs, replaceTags = []int64{req.TagID.Value}, true
	}

	if replaceTags {
		if err := s.validateTags(ctx, userID, tagIDs); err != nil {
			return nil, err
		}

		if err := s.taskTagRepo.DeleteByTask(ctx, task.ID); err != nil {
			return nil, err
		}
		if err := s.taskTagRepo.Add(ctx, task.ID, tagIDs); err != nil {
			return nil, err
		}
		task.TagID = legacyTagID(tagIDs)
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	if err := s.resolveTags(ctx, task); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(userID, "update_task", map[string]interface{}{"task_id": task.ID, "tags_replaced": replaceTags})

	return task, nil
}

// DeleteTask removes the task's join rows, then the task
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID int64) error {
	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return err
	}

	if err := s.taskTagRepo.DeleteByTask(ctx, task.ID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return err
	}

	s.releaseImage(ctx, task)

	s.logger.LogUserAction(userID, "delete_task", map[string]interface{}{"task_id": task.ID})

	return nil
}

func (s *TaskService) ownedTask(ctx context.Context, userID, taskID int64) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !entities.BelongsTo(task, userID) {
		return nil, entities.ErrTaskNotFound
	}

	return task, nil
}

// validateTags fails unless every id names a tag owned by userID
func (s *TaskService) validateTags(ctx context.Context, userID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	tags, err := s.tagRepo.GetByIDs(ctx, tagIDs)
	if err != nil {
		return err
	}

	if len(tags) != len(tagIDs) {
		return entities.ErrInvalidTags
	}
	for _, tag := range tags {
		if !entities.BelongsTo(tag, userID) {
			return entities.ErrInvalidTags
		}
	}

	return nil
}

// resolveTags fills Tags on each task: join rows if any, else the legacy
// tagId referent, else empty. One query per representation for the batch.
func (s *TaskService) resolveTags(ctx context.Context, tasks ...*entities.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	taskIDs := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		taskIDs = append(taskIDs, task.ID)
	}

	joined, err := s.taskTagRepo.TagsForTasks(ctx, taskIDs)
	if err != nil {
		return err
	}

	var legacyIDs []int64
	for _, task := range tasks {
		if len(joined[task.ID]) == 0 && task.TagID != nil {
			legacyIDs = append(legacyIDs, *task.TagID)
		}
	}

	legacy := make(map[int64]*entities.Tag)
	if len(legacyIDs) > 0 {
		tags, err := s.tagRepo.GetByIDs(ctx, uniqueIDs(legacyIDs))
		if err != nil {
			return err
		}
		for _, tag := range tags {
			legacy[tag.ID] = tag
		}
	}

	for _, task := range tasks {
		task.Tags = []entities.Tag{}
		if tags := joined[task.ID]; len(tags) > 0 {
			task.Tags = tags
			continue
		}
		if task.TagID == nil {
			continue
		}
		if tag, ok := legacy[*task.TagID]; ok && entities.BelongsTo(tag, task.UserID) {
			task.Tags = []entities.Tag{*tag}
		}
	}

	return nil
}

// releaseImage removes an uploaded file no remaining task refers to
func (s *TaskService) releaseImage(ctx context.Context, task *entities.Task) {
	if s.images == nil || task.Image == nil {
		return
	}

	filename, ok := entities.ImageFilename(*task.Image)
	if !ok {
		return
	}

	count, err := s.taskRepo.CountByImage(ctx, entities.ImageRefs(filename))
	if err != nil {
		s.logger.Warn("Failed to count image references", "error", err, "filename", filename)
		return
	}
	if count > 0 {
		return
	}

	if err := s.images.Remove(filename); err != nil && !errors.Is(err, entities.ErrNotFound) {
		s.logger.Warn("Failed to remove uploaded image", "error", err, "filename", filename)
	}
}

// legacyTagID mirrors a single tag into tasks.tagId; any other count clears it
func legacyTagID(tagIDs []int64) *int64 {
	if len(tagIDs) != 1 {
		return nil
	}
	id := tagIDs[0]
	return &id
}

// uniqueIDs drops repeated ids, keeping first occurrences in order
func uniqueIDs(ids []int64) []int64 {
	if ids == nil {
		return nil
	}

	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
