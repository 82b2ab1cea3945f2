package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"taskquest/internal/model"
	"taskquest/internal/repository"
)

// ErrValidation marks client-caused input errors.
var ErrValidation = errors.New("invalid input")

// Classifier suggests hierarchical tag paths for a task.
type Classifier interface {
	Suggest(ctx context.Context, title, description, category, hierarchy string) ([]string, error)
}

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title             string
	Description       string
	Category          string
	Priority          int
	DueDate           *time.Time
	IsRecurring       bool
	RecurrencePattern string
}

// TaskUpdate carries a field-level partial update; nil fields are untouched.
type TaskUpdate struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	Category          *string    `json:"category"`
	Priority          *int       `json:"priority"`
	DueDate           *time.Time `json:"due_date"`
	IsRecurring       *bool      `json:"is_recurring"`
	RecurrencePattern *string    `json:"recurrence_pattern"`
	IsActive          *bool      `json:"is_active"`
}

// TaskService wraps task CRUD and auto-tagging.
type TaskService struct {
	tasks      *repository.TaskRepository
	tags       *repository.TagRepository
	tagSvc     *TagService
	classifier Classifier
}

func NewTaskService(tasks *repository.TaskRepository, tags *repository.TagRepository, tagSvc *TagService, classifier Classifier) *TaskService {
	return &TaskService{tasks: tasks, tags: tags, tagSvc: tagSvc, classifier: classifier}
}

func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !model.ValidCategory(input.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, input.Category)
	}
	if input.Priority < 0 {
		return nil, fmt.Errorf("%w: priority must be positive", ErrValidation)
	}
	if input.Priority == 0 {
		input.Priority = 3
	}

	task := &model.Task{
		Title:             input.Title,
		Description:       input.Description,
		Category:          input.Category,
		Priority:          input.Priority,
		DueDate:           input.DueDate,
		IsRecurring:       input.IsRecurring,
		RecurrencePattern: input.RecurrencePattern,
		IsActive:          true,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.autoTag(ctx, task)
	return task, nil
}

// autoTag asks the classifier for tag paths and attaches them. Best-effort:
// a failed or empty suggestion never fails the create.
func (s *TaskService) autoTag(ctx context.Context, task *model.Task) {
	if s.classifier == nil {
		return
	}

	existing, err := s.tags.ListAll(ctx)
	if err != nil {
		log.Printf("auto-tag: list tags: %v", err)
		return
	}

	paths, err := s.classifier.Suggest(ctx, task.Title, task.Description, task.Category, HierarchyPrompt(existing))
	if err != nil {
		log.Printf("auto-tag: classifier: %v", err)
		return
	}

	var tagIDs []uint
	for _, path := range paths {
		tagID, err := s.tagSvc.EnsurePath(ctx, path, task.Category)
		if err != nil {
			log.Printf("auto-tag: ensure path %q: %v", path, err)
			continue
		}
		tagIDs = append(tagIDs, tagID)
	}

	if err := s.tasks.AttachTags(ctx, task, tagIDs); err != nil {
		log.Printf("auto-tag: %v", err)
	}
}

func (s *TaskService) ListActive(ctx context.Context) ([]model.Task, error) {
	return s.tasks.ListActive(ctx)
}

func (s *TaskService) GetTask(ctx context.Context, taskID uint) (*model.Task, error) {
	return s.tasks.FindByID(ctx, taskID)
}

func (s *TaskService) UpdateTask(ctx context.Context, taskID uint, update TaskUpdate) (*model.Task, error) {
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Category != nil {
		if !model.ValidCategory(*update.Category) {
			return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, *update.Category)
		}
		fields["category"] = *update.Category
	}
	if update.Priority != nil {
		if *update.Priority <= 0 {
			return nil, fmt.Errorf("%w: priority must be positive", ErrValidation)
		}
		fields["priority"] = *update.Priority
	}
	if update.DueDate != nil {
		fields["due_date"] = *update.DueDate
	}
	if update.IsRecurring != nil {
		fields["is_recurring"] = *update.IsRecurring
	}
	if update.RecurrencePattern != nil {
		fields["recurrence_pattern"] = *update.RecurrencePattern
	}
	if update.IsActive != nil {
		fields["is_active"] = *update.IsActive
	}

	if err := s.tasks.Update(ctx, taskID, fields); err != nil {
		return nil, err
	}
	return s.tasks.FindByID(ctx, taskID)
}

// DeleteTask hard-deletes a task and cascades to its completions and tag
// associations.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint) error {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	return s.tasks.Delete(ctx, task)
}
