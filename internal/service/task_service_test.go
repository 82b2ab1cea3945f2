package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskquest/internal/model"
	"taskquest/internal/repository"
)

type stubClassifier struct {
	paths []string
	err   error
}

func (s *stubClassifier) Suggest(context.Context, string, string, string, string) ([]string, error) {
	return s.paths, s.err
}

func newTaskService(db *gorm.DB, c Classifier) *TaskService {
	tagRepo := repository.NewTagRepository(db)
	return NewTaskService(repository.NewTaskRepository(db), tagRepo, NewTagService(tagRepo), c)
}

func TestCreateTaskValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db, nil)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, TaskInput{Category: "mental"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateTask(ctx, TaskInput{Title: "x", Category: "spiritual"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateTaskDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db, nil)

	task, err := svc.CreateTask(context.Background(), TaskInput{Title: "read", Category: "mental"})
	require.NoError(t, err)

	assert.Equal(t, 3, task.Priority)
	assert.True(t, task.IsActive)
}

func TestCreateTaskAutoTags(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db, &stubClassifier{paths: []string{"Math/Calculus", "Math/Algebra"}})
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskInput{Title: "problem set", Category: "mental"})
	require.NoError(t, err)

	var tags []model.Tag
	require.NoError(t, db.Joins("JOIN task_tags ON task_tags.tag_id = tags.id").
		Where("task_tags.task_id = ?", task.ID).Find(&tags).Error)
	require.Len(t, tags, 2)

	var total int64
	require.NoError(t, db.Model(&model.Tag{}).Count(&total).Error)
	assert.EqualValues(t, 3, total, "Math ancestor shared between both paths")
}

func TestCreateTaskSurvivesClassifierFailure(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db, &stubClassifier{err: errors.New("upstream down")})

	task, err := svc.CreateTask(context.Background(), TaskInput{Title: "read", Category: "mental"})
	require.NoError(t, err, "classifier failures are best-effort, not create failures")
	require.NotZero(t, task.ID)
}

func TestUpdateTaskPartial(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db, nil)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskInput{Title: "read", Category: "mental", Priority: 2})
	require.NoError(t, err)

	newTitle := "read more"
	newPriority := 5
	updated, err := svc.UpdateTask(ctx, task.ID, TaskUpdate{Title: &newTitle, Priority: &newPriority})
	require.NoError(t, err)

	assert.Equal(t, "read more", updated.Title)
	assert.Equal(t, 5, updated.Priority)
	assert.Equal(t, "mental", updated.Category, "untouched fields survive")

	badCategory := "unknown"
	_, err = svc.UpdateTask(ctx, task.ID, TaskUpdate{Category: &badCategory})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteTaskCascades(t *testing.T) {
	db := newTestDB(t)
	svc := newTaskService(db, &stubClassifier{paths: []string{"A/B", "C", "D"}})
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskInput{Title: "doomed", Category: "mental"})
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, db.Create(&model.TaskCompletion{TaskID: task.ID, Quality: 3, CompletedAt: now}).Error)
	require.NoError(t, db.Create(&model.TaskCompletion{TaskID: task.ID, Quality: 4, CompletedAt: now}).Error)

	require.NoError(t, svc.DeleteTask(ctx, task.ID))

	var completions int64
	require.NoError(t, db.Model(&model.TaskCompletion{}).Where("task_id = ?", task.ID).Count(&completions).Error)
	assert.Zero(t, completions)

	var associations int64
	require.NoError(t, db.Table("task_tags").Where("task_id = ?", task.ID).Count(&associations).Error)
	assert.Zero(t, associations)

	_, err = svc.GetTask(ctx, task.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
