package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskquest/internal/model"
)

// CompletionRepository handles completion records.
type CompletionRepository struct {
	db *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

func (r *CompletionRepository) Create(ctx context.Context, completion *model.TaskCompletion) error {
	if err := r.db.WithContext(ctx).Create(completion).Error; err != nil {
		return fmt.Errorf("create completion: %w", err)
	}
	return nil
}

func (r *CompletionRepository) Count(ctx context.Context) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.TaskCompletion{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// CountByTag returns, per tag, the number of completions whose task carries
// that tag directly. Hierarchical roll-up happens in the skill-tree builder.
func (r *CompletionRepository) CountByTag(ctx context.Context) (map[uint]int, error) {
	var rows []struct {
		TagID uint
		N     int
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT task_tags.tag_id AS tag_id, COUNT(task_completions.id) AS n
		FROM task_completions
		JOIN task_tags ON task_tags.task_id = task_completions.task_id
		GROUP BY task_tags.tag_id`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count completions by tag: %w", err)
	}
	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.TagID] = row.N
	}
	return counts, nil
}

func (r *CompletionRepository) ListByTask(ctx context.Context, taskID uint) ([]model.TaskCompletion, error) {
	var completions []model.TaskCompletion
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).
		Order("completed_at DESC").
		Find(&completions).Error; err != nil {
		return nil, err
	}
	return completions, nil
}

func (r *CompletionRepository) FindByID(ctx context.Context, completionID uint) (*model.TaskCompletion, error) {
	var completion model.TaskCompletion
	if err := r.db.WithContext(ctx).First(&completion, completionID).Error; err != nil {
		return nil, err
	}
	return &completion, nil
}

// UpdateNotes mutates a completion's notes, the only field that may change
// after insert.
func (r *CompletionRepository) UpdateNotes(ctx context.Context, completionID uint, notes string) error {
	if err := r.db.WithContext(ctx).Model(&model.TaskCompletion{ID: completionID}).
		Update("notes", notes).Error; err != nil {
		return fmt.Errorf("update completion notes: %w", err)
	}
	return nil
}
