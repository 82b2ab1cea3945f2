package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskquest/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListActive(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).
		Order("due_date NULLS LAST, created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, taskID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies a field-level partial update.
func (r *TaskRepository) Update(ctx context.Context, taskID uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Task{ID: taskID}).Updates(fields).Error; err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// AttachTags links the given tags to a task via the join table.
func (r *TaskRepository) AttachTags(ctx context.Context, task *model.Task, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Find(&tags, tagIDs).Error; err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(task).Association("Tags").Append(&tags); err != nil {
		return fmt.Errorf("attach tags: %w", err)
	}
	return nil
}

// Delete hard-deletes a task together with its completions and tag
// associations. The cascade is driven here, not by the database.
func (r *TaskRepository) Delete(ctx context.Context, task *model.Task) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("task_id = ?", task.ID).Delete(&model.TaskCompletion{}).Error; err != nil {
		return fmt.Errorf("delete completions: %w", err)
	}
	if err := db.Model(task).Association("Tags").Clear(); err != nil {
		return fmt.Errorf("clear tag associations: %w", err)
	}
	if err := db.Delete(task).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
