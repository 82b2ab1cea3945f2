package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskquest/internal/classifier"
	"taskquest/internal/config"
	"taskquest/internal/ledger"
	"taskquest/internal/notify"
	"taskquest/internal/repository"
	"taskquest/internal/server"
	"taskquest/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	tagRepo := repository.NewTagRepository(db)
	completionRepo := repository.NewCompletionRepository(db)

	store := ledger.NewGistStore(cfg.GistID, cfg.GistToken)

	var tagClassifier service.Classifier
	if cfg.AnthropicAPIKey != "" {
		tagClassifier = classifier.New(cfg.AnthropicAPIKey)
	} else {
		log.Println("ANTHROPIC_API_KEY not set, auto-tagging disabled")
	}

	var sender notify.Notifier = notify.LogNotifier{}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		telegram, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
		sender = telegram
	} else {
		log.Println("Telegram not configured, notifications go to the log")
	}

	tagSvc := service.NewTagService(tagRepo)
	taskSvc := service.NewTaskService(taskRepo, tagRepo, tagSvc, tagClassifier)
	pointsSvc := service.NewPointsService(taskRepo, completionRepo, tagRepo, tagSvc, store)
	skillsSvc := service.NewSkillTreeService(tagRepo, completionRepo, store)
	notifierSvc := service.NewNotifierService(taskRepo, store, sender, cfg.SentLogPath)

	scheduler := service.NewSchedulerService(time.Local)
	notifyJob := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := notifierSvc.Run(jobCtx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("notifier: %v", err)
		}
	}
	if cfg.NotifyDailyAt != "" {
		if _, err := scheduler.ScheduleDaily(cfg.NotifyDailyAt, notifyJob); err != nil {
			log.Fatalf("schedule daily notifier: %v", err)
		}
	}
	if cfg.NotifyInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.NotifyInterval, notifyJob); err != nil {
			log.Fatalf("schedule notifier: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(taskSvc, pointsSvc, skillsSvc, store)
	log.Printf("taskquest listening on %s", cfg.ListenAddr)
	if err := srv.Run(ctx, cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
