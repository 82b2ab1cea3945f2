package ledger

import (
	"fmt"
	"time"

	"taskquest/internal/model"
)

// Event types recorded in the ledger history.
const (
	EventCompleted = "completed"
	EventOverdue   = "overdue"
)

// maxHistory caps the history log; oldest entries drop first.
const maxHistory = 100

// HistoryEntry is one signed point event in the ledger history.
type HistoryEntry struct {
	TaskID   uint   `json:"task_id,omitempty"`
	Task     string `json:"task"`
	Category string `json:"category,omitempty"`
	Points   int    `json:"points"`
	Type     string `json:"type"`
	Quality  int    `json:"quality,omitempty"`
	Date     string `json:"date"`
}

// Ledger is the single gamification-state document. It is read, mutated in
// memory, and written back as a whole; the backing store is last-writer-wins.
type Ledger struct {
	Total          int               `json:"total"`
	Categories     map[string]int    `json:"categories"`
	TagPoints      map[string]int    `json:"tag_points"`
	LastDeductions map[string]string `json:"last_deductions"`
	History        []HistoryEntry    `json:"history"`
}

// New returns a ledger in its default shape: zero total and one zeroed
// bucket per category.
func New() *Ledger {
	l := &Ledger{
		Categories:     make(map[string]int, len(model.Categories)),
		TagPoints:      map[string]int{},
		LastDeductions: map[string]string{},
		History:        []HistoryEntry{},
	}
	for _, cat := range model.Categories {
		l.Categories[cat] = 0
	}
	return l
}

// normalize fills in maps that a partially-populated stored document omits.
func (l *Ledger) normalize() {
	if l.Categories == nil {
		l.Categories = map[string]int{}
	}
	for _, cat := range model.Categories {
		if _, ok := l.Categories[cat]; !ok {
			l.Categories[cat] = 0
		}
	}
	if l.TagPoints == nil {
		l.TagPoints = map[string]int{}
	}
	if l.LastDeductions == nil {
		l.LastDeductions = map[string]string{}
	}
}

func (l *Ledger) appendHistory(entry HistoryEntry) {
	l.History = append(l.History, entry)
	if len(l.History) > maxHistory {
		l.History = l.History[len(l.History)-maxHistory:]
	}
}

// AddPoints credits a completed task: running total, category bucket and a
// history entry.
func (l *Ledger) AddPoints(task *model.Task, points, quality int, now time.Time) {
	l.Total += points
	l.Categories[task.Category] += points
	l.appendHistory(HistoryEntry{
		TaskID:   task.ID,
		Task:     task.Title,
		Category: task.Category,
		Points:   points,
		Type:     EventCompleted,
		Quality:  quality,
		Date:     now.Format(time.RFC3339),
	})
}

// AddTagPoints credits a single tag path with the full point amount.
func (l *Ledger) AddTagPoints(path string, points int) {
	if path == "" {
		return
	}
	l.TagPoints[path] += points
}

// RecordOverduePenalty deducts priority×5 for an overdue task, at most once
// per task and due-date calendar day. Returns the amount deducted, zero when
// the deduction was already applied.
func (l *Ledger) RecordOverduePenalty(task *model.Task, now time.Time) int {
	if task.DueDate == nil {
		return 0
	}
	key := fmt.Sprintf("%d_%s", task.ID, task.DueDate.Format("2006-01-02"))
	if _, done := l.LastDeductions[key]; done {
		return 0
	}

	penalty := task.Priority * 5
	l.Total -= penalty
	l.Categories[task.Category] -= penalty
	l.LastDeductions[key] = now.Format(time.RFC3339)
	l.appendHistory(HistoryEntry{
		TaskID:   task.ID,
		Task:     task.Title,
		Category: task.Category,
		Points:   -penalty,
		Type:     EventOverdue,
		Date:     now.Format(time.RFC3339),
	})
	return penalty
}
