package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskquest/internal/model"
)

func testTask(id uint, priority int, due time.Time) *model.Task {
	return &model.Task{
		ID:       id,
		Title:    fmt.Sprintf("task %d", id),
		Category: "mental",
		Priority: priority,
		DueDate:  &due,
	}
}

func TestNewLedgerShape(t *testing.T) {
	l := New()

	assert.Equal(t, 0, l.Total)
	assert.Empty(t, l.History)
	assert.Empty(t, l.LastDeductions)
	for _, cat := range model.Categories {
		points, ok := l.Categories[cat]
		require.True(t, ok, "missing category bucket %q", cat)
		assert.Equal(t, 0, points)
	}
}

func TestRecordOverduePenalty(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-26 * time.Hour)

	l := New()
	task := testTask(7, 4, due)

	penalty := l.RecordOverduePenalty(task, now)
	assert.Equal(t, 20, penalty)
	assert.Equal(t, -20, l.Total)
	assert.Equal(t, -20, l.Categories["mental"])

	require.Len(t, l.History, 1)
	assert.Equal(t, EventOverdue, l.History[0].Type)
	assert.Equal(t, -20, l.History[0].Points)
	assert.Equal(t, uint(7), l.History[0].TaskID)
}

func TestRecordOverduePenaltyIdempotentPerDay(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-26 * time.Hour)

	l := New()
	task := testTask(7, 4, due)

	first := l.RecordOverduePenalty(task, now)
	second := l.RecordOverduePenalty(task, now.Add(time.Hour))

	assert.Equal(t, 20, first)
	assert.Equal(t, 0, second, "second application for the same due-date day must be a no-op")
	assert.Equal(t, -20, l.Total)
	assert.Len(t, l.History, 1)

	// A new due date opens a new dedupe window.
	nextDue := due.AddDate(0, 0, 1)
	task.DueDate = &nextDue
	assert.Equal(t, 20, l.RecordOverduePenalty(task, now.Add(2*time.Hour)))
}

func TestRecordOverduePenaltyNoDueDate(t *testing.T) {
	l := New()
	task := &model.Task{ID: 1, Title: "floating", Category: "social", Priority: 5}

	assert.Equal(t, 0, l.RecordOverduePenalty(task, time.Now()))
	assert.Equal(t, 0, l.Total)
	assert.Empty(t, l.History)
}

func TestHistoryCappedAt100(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	l := New()

	for i := 0; i < 150; i++ {
		task := &model.Task{ID: uint(i + 1), Title: fmt.Sprintf("task %d", i+1), Category: "physical", Priority: 2}
		l.AddPoints(task, 20, 3, now)
	}

	require.Len(t, l.History, 100)
	// Oldest entries fall off first.
	assert.Equal(t, uint(51), l.History[0].TaskID)
	assert.Equal(t, uint(150), l.History[99].TaskID)
	assert.Equal(t, 150*20, l.Total)
}

func TestAddPointsHistoryEntry(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	l := New()
	task := &model.Task{ID: 3, Title: "read paper", Category: "mental", Priority: 5}

	l.AddPoints(task, 50, 4, now)

	assert.Equal(t, 50, l.Total)
	assert.Equal(t, 50, l.Categories["mental"])
	require.Len(t, l.History, 1)
	entry := l.History[0]
	assert.Equal(t, EventCompleted, entry.Type)
	assert.Equal(t, 4, entry.Quality)
	assert.Equal(t, now.Format(time.RFC3339), entry.Date)
}

func TestAddTagPointsIgnoresEmptyPath(t *testing.T) {
	l := New()
	l.AddTagPoints("", 10)
	l.AddTagPoints("Math/Calculus", 10)
	l.AddTagPoints("Math/Calculus", 5)

	assert.Empty(t, l.TagPoints[""])
	assert.Equal(t, 15, l.TagPoints["Math/Calculus"])
}

func TestNormalizeFillsMissingMaps(t *testing.T) {
	l := &Ledger{Total: 42}
	l.normalize()

	assert.NotNil(t, l.TagPoints)
	assert.NotNil(t, l.LastDeductions)
	for _, cat := range model.Categories {
		_, ok := l.Categories[cat]
		assert.True(t, ok, "category %q not initialized", cat)
	}
}
