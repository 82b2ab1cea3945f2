package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskquest/internal/ledger"
	"taskquest/internal/model"
	"taskquest/internal/notify"
	"taskquest/internal/repository"
)

const (
	dueSoonWindow    = 3 * time.Hour
	overdueRenotify  = 24 * time.Hour
	reminderRenotify = 6 * time.Hour
)

// NotifierService is the batch job: bucket active tasks into overdue and
// due-soon, push deduplicated messages, and apply overdue penalties to the
// ledger.
type NotifierService struct {
	tasks       *repository.TaskRepository
	store       ledger.Store
	sender      notify.Notifier
	sentLogPath string
}

func NewNotifierService(tasks *repository.TaskRepository, store ledger.Store, sender notify.Notifier, sentLogPath string) *NotifierService {
	return &NotifierService{tasks: tasks, store: store, sender: sender, sentLogPath: sentLogPath}
}

// Run executes one notifier pass. Errors in individual sends are logged and
// skipped; store failures abort the pass.
func (s *NotifierService) Run(ctx context.Context, now time.Time) error {
	tasks, err := s.tasks.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	overdue, dueSoon := bucketTasks(tasks, now)
	log.Printf("notifier: %d overdue, %d due soon", len(overdue), len(dueSoon))

	sentLog := s.loadSentLog()
	var messages []string

	for _, task := range overdue {
		if shouldNotify(task.ID, "overdue", sentLog, now) {
			messages = append(messages, fmt.Sprintf("OVERDUE: %s - Category: %s", task.Title, strings.ToUpper(task.Category)))
			sentLog[sentKey(task.ID, "overdue")] = now.Format(time.RFC3339)
		}
	}
	for _, task := range dueSoon {
		if shouldNotify(task.ID, "reminder", sentLog, now) {
			hoursLeft := task.DueDate.Sub(now).Hours()
			messages = append(messages, fmt.Sprintf("DUE IN %.1fH: %s", hoursLeft, task.Title))
			sentLog[sentKey(task.ID, "reminder")] = now.Format(time.RFC3339)
		}
	}

	for _, msg := range messages {
		if err := s.sender.Notify(ctx, msg); err != nil {
			log.Printf("notifier: send: %v", err)
		}
	}
	s.saveSentLog(sentLog)

	if len(overdue) > 0 {
		led, err := s.store.Load(ctx)
		if err != nil {
			return fmt.Errorf("load ledger: %w", err)
		}
		for i := range overdue {
			if penalty := led.RecordOverduePenalty(&overdue[i], now); penalty > 0 {
				log.Printf("notifier: -%d points for %q", penalty, overdue[i].Title)
			}
		}
		if err := s.store.Save(ctx, led); err != nil {
			return fmt.Errorf("save ledger: %w", err)
		}
	}

	return nil
}

// bucketTasks splits tasks into overdue and due-within-3h. Tasks without a
// due date are ignored.
func bucketTasks(tasks []model.Task, now time.Time) (overdue, dueSoon []model.Task) {
	for _, task := range tasks {
		if task.DueDate == nil {
			continue
		}
		diff := task.DueDate.Sub(now)
		switch {
		case diff < 0:
			overdue = append(overdue, task)
		case diff < dueSoonWindow:
			dueSoon = append(dueSoon, task)
		}
	}
	return overdue, dueSoon
}

// shouldNotify checks the sent log: overdue repeats after 24h, reminders
// after 6h. An unparseable timestamp counts as never sent.
func shouldNotify(taskID uint, kind string, sentLog map[string]string, now time.Time) bool {
	raw, ok := sentLog[sentKey(taskID, kind)]
	if !ok {
		return true
	}
	lastSent, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return true
	}
	elapsed := now.Sub(lastSent)
	if kind == "overdue" {
		return elapsed > overdueRenotify
	}
	return elapsed > reminderRenotify
}

func sentKey(taskID uint, kind string) string {
	return fmt.Sprintf("%d_%s", taskID, kind)
}

func (s *NotifierService) loadSentLog() map[string]string {
	sentLog := map[string]string{}
	data, err := os.ReadFile(s.sentLogPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("notifier: load sent log: %v", err)
		}
		return sentLog
	}
	if err := json.Unmarshal(data, &sentLog); err != nil {
		log.Printf("notifier: decode sent log: %v", err)
		return map[string]string{}
	}
	return sentLog
}

func (s *NotifierService) saveSentLog(sentLog map[string]string) {
	data, err := json.MarshalIndent(sentLog, "", "  ")
	if err != nil {
		log.Printf("notifier: encode sent log: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.sentLogPath), 0o755); err != nil {
		log.Printf("notifier: save sent log: %v", err)
		return
	}
	if err := os.WriteFile(s.sentLogPath, data, 0o644); err != nil {
		log.Printf("notifier: save sent log: %v", err)
	}
}
