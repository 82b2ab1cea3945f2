package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskquest/internal/model"
)

// TagRepository manages the hierarchical tag forest.
type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// FindChild looks up a tag by name and category under the given parent.
// A nil parentID matches root tags (parent_tag_id IS NULL), never a sentinel.
func (r *TagRepository) FindChild(ctx context.Context, parentID *uint, name, category string) (*model.Tag, error) {
	q := r.db.WithContext(ctx).Where("name = ? AND category = ?", name, category)
	if parentID == nil {
		q = q.Where("parent_tag_id IS NULL")
	} else {
		q = q.Where("parent_tag_id = ?", *parentID)
	}
	var tag model.Tag
	if err := q.First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *TagRepository) Create(ctx context.Context, tag *model.Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

func (r *TagRepository) FindByID(ctx context.Context, tagID uint) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.WithContext(ctx).First(&tag, tagID).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *TagRepository) ListAll(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// ListByTask returns the tags attached to a task.
func (r *TagRepository) ListByTask(ctx context.Context, taskID uint) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).
		Joins("JOIN task_tags ON task_tags.tag_id = tags.id").
		Where("task_tags.task_id = ?", taskID).
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
