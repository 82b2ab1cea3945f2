package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"taskquest/internal/ledger"
	"taskquest/internal/model"
	"taskquest/internal/repository"
)

const defaultQuality = 3

var everyNDays = regexp.MustCompile(`(?i)^every\s+(\d+)\s+days?$`)

// CompletionResult reports the outcome of completing a task.
type CompletionResult struct {
	Message      string     `json:"message"`
	PointsEarned int        `json:"points_earned"`
	WasLate      bool       `json:"was_late"`
	NextDue      *time.Time `json:"next_due,omitempty"`
}

// PointsService runs the completion workflow: log the completion, award
// points into the ledger, and either deactivate the task or advance its due
// date. Ledger updates are load-modify-save with no cross-store rollback; a
// completion row inserted before a failed ledger save stands uncorrected.
type PointsService struct {
	tasks       *repository.TaskRepository
	completions *repository.CompletionRepository
	tags        *repository.TagRepository
	tagSvc      *TagService
	store       ledger.Store
}

func NewPointsService(tasks *repository.TaskRepository, completions *repository.CompletionRepository, tags *repository.TagRepository, tagSvc *TagService, store ledger.Store) *PointsService {
	return &PointsService{
		tasks:       tasks,
		completions: completions,
		tags:        tags,
		tagSvc:      tagSvc,
		store:       store,
	}
}

// CompleteTask handles one completion event. A late completion earns zero
// points; the overdue penalty belongs to the batch notifier, not this path.
func (s *PointsService) CompleteTask(ctx context.Context, taskID uint, quality *int, notes string, now time.Time) (*CompletionResult, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	q := defaultQuality
	if quality != nil {
		q = *quality
	}

	late := task.DueDate != nil && now.After(*task.DueDate)

	completion := &model.TaskCompletion{
		TaskID:      task.ID,
		Quality:     q,
		Notes:       notes,
		WasLate:     late,
		CompletedAt: now,
	}
	if err := s.completions.Create(ctx, completion); err != nil {
		return nil, err
	}

	points := 0
	if !late {
		points = CalculatePoints(task, q)
	}

	if points > 0 {
		led, err := s.store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load ledger: %w", err)
		}
		led.AddPoints(task, points, q, now)

		tags, err := s.tags.ListByTask(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("list task tags: %w", err)
		}
		for _, tag := range tags {
			if err := s.propagateTagPoints(ctx, led, tag, points); err != nil {
				return nil, err
			}
		}

		if err := s.store.Save(ctx, led); err != nil {
			return nil, fmt.Errorf("save ledger: %w", err)
		}
	}

	result := &CompletionResult{PointsEarned: points, WasLate: late}

	if !task.IsRecurring {
		task.IsActive = false
		if err := s.tasks.Save(ctx, task); err != nil {
			return nil, err
		}
		result.Message = fmt.Sprintf("Task %q completed (+%d points)", task.Title, points)
		return result, nil
	}

	base := now
	if task.DueDate != nil {
		base = *task.DueDate
	}
	next := NextDueDate(base, task.RecurrencePattern)
	task.DueDate = &next
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	result.NextDue = &next
	result.Message = fmt.Sprintf("Task %q completed (+%d points), next due %s", task.Title, points, next.Format(time.RFC3339))
	return result, nil
}

// propagateTagPoints credits the tag and every ancestor with the full,
// undiminished point amount.
func (s *PointsService) propagateTagPoints(ctx context.Context, led *ledger.Ledger, tag model.Tag, points int) error {
	visited := make(map[uint]bool)
	current := &tag.ID

	for current != nil {
		if visited[*current] {
			return ErrTagCycle
		}
		visited[*current] = true

		node, err := s.tags.FindByID(ctx, *current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return fmt.Errorf("resolve tag %d: %w", *current, err)
		}

		path, err := s.tagSvc.ResolvePath(ctx, node.ID)
		if err != nil {
			return err
		}
		led.AddTagPoints(path, points)
		current = node.ParentTagID
	}
	return nil
}

// ListCompletions returns a task's completion log, newest first.
func (s *PointsService) ListCompletions(ctx context.Context, taskID uint) ([]model.TaskCompletion, error) {
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.completions.ListByTask(ctx, taskID)
}

// UpdateCompletionNotes edits the notes on an existing completion record.
func (s *PointsService) UpdateCompletionNotes(ctx context.Context, completionID uint, notes string) (*model.TaskCompletion, error) {
	if _, err := s.completions.FindByID(ctx, completionID); err != nil {
		return nil, err
	}
	if err := s.completions.UpdateNotes(ctx, completionID, notes); err != nil {
		return nil, err
	}
	return s.completions.FindByID(ctx, completionID)
}

// CalculatePoints applies the scoring rules for an on-time completion. The
// multipliers run in a fixed order and each truncates to an integer before
// the next applies.
func CalculatePoints(task *model.Task, quality int) int {
	points := task.Priority * 10

	// Recurring daily tasks are cheap reps, worth a fraction of the base.
	if task.IsRecurring && strings.Contains(strings.ToLower(task.RecurrencePattern), "daily") {
		points = int(float64(points) * 0.3)
	}

	switch {
	case quality >= 4:
		points = int(float64(points) * 1.2)
	case quality <= 2:
		points = int(float64(points) * 0.8)
	}

	return points
}

// NextDueDate advances a due date by the recurrence pattern. An unrecognized
// pattern falls back to one week.
func NextDueDate(due time.Time, pattern string) time.Time {
	trimmed := strings.TrimSpace(pattern)

	switch strings.ToLower(trimmed) {
	case "daily":
		return due.AddDate(0, 0, 1)
	case "weekly":
		return due.AddDate(0, 0, 7)
	case "monthly":
		year, month, day := due.Date()
		if month == time.December {
			year++
			month = time.January
		} else {
			month++
		}
		hour, minute, sec := due.Clock()
		return time.Date(year, month, day, hour, minute, sec, due.Nanosecond(), due.Location())
	case "yearly":
		return due.AddDate(1, 0, 0)
	}

	if m := everyNDays.FindStringSubmatch(trimmed); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return due.AddDate(0, 0, n)
		}
	}

	return due.AddDate(0, 0, 7)
}
