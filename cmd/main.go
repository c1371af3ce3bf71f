package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/rsmonitor/internal/alert"
	"github.com/rsmonitor/internal/api"
	"github.com/rsmonitor/internal/auth"
	"github.com/rsmonitor/internal/config"
	"github.com/rsmonitor/internal/database"
	"github.com/rsmonitor/internal/logger"
	"github.com/rsmonitor/internal/monitor"
	"github.com/rsmonitor/internal/notify"
)

func main() {
	// Environment first, config reads from it
	if err := godotenv.Load(); err == nil {
		logrus.Debug("Loaded environment from .env")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		logrus.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize database
	if err := database.Initialize(cfg.Database.Path); err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	db := database.GetDB()

	// Alerting pipeline
	dispatcher := notify.NewDispatcher(buildNotifiers(&cfg.Alerts)...)
	manager := alert.NewManager(&cfg.Alerts, dispatcher)

	// Probes and orchestration
	monitors := buildMonitors(cfg, db)
	orchestrator := monitor.NewOrchestrator(manager, monitors, cfg.Monitoring.MaxConcurrentChecks)

	if cfg.Monitoring.AutoStart {
		orchestrator.Start(time.Duration(cfg.Monitoring.IntervalSeconds) * time.Second)
	}

	// API server
	authenticator := auth.New(cfg.Server)
	server := api.NewServer(orchestrator, manager, authenticator)

	go func() {
		if err := server.Start(cfg.Server.Port); err != nil {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()
	logrus.Infof("API listening on port %d", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down")
	orchestrator.Stop()
}

func buildNotifiers(cfg *config.AlertConfig) []notify.Notifier {
	var notifiers []notify.Notifier

	if cfg.Slack.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(
			cfg.Slack.WebhookURL, cfg.Slack.Channel, cfg.Slack.Username))
		logrus.Info("Slack notifications enabled")
	}

	if cfg.Email.Enabled && cfg.Email.SMTPHost != "" {
		notifiers = append(notifiers, notify.NewEmailNotifier(
			cfg.Email.SMTPHost, cfg.Email.SMTPPort,
			cfg.Email.Username, cfg.Email.Password,
			cfg.Email.From, cfg.Email.To))
		logrus.Info("Email notifications enabled")
	}

	if len(notifiers) == 0 {
		logrus.Warn("No notification channels configured, alerts will only be recorded")
	}

	return notifiers
}

func buildMonitors(cfg *config.Config, db *gorm.DB) []monitor.Monitor {
	var monitors []monitor.Monitor

	for _, name := range cfg.Monitoring.Components {
		switch name {
		case "database":
			monitors = append(monitors, monitor.NewDatabaseMonitor(db, cfg.Database.Path, cfg.Thresholds))
		case "api":
			monitors = append(monitors, monitor.NewAPIMonitor(cfg.API, cfg.Thresholds))
		case "queue":
			monitors = append(monitors, monitor.NewQueueMonitor(db, cfg.Thresholds))
		case "storage":
			monitors = append(monitors, monitor.NewStorageMonitor(cfg.Storage, cfg.Thresholds))
		case "activity":
			monitors = append(monitors, monitor.NewActivityMonitor(db, cfg.Thresholds))
		default:
			logrus.Warnf("Unknown monitoring component %q, skipping", name)
		}
	}

	return monitors
}
