package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/app"
)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if v := os.Getenv("CRM_LOG_LEVEL"); v != "" {
		if level, err := log.ParseLevel(v); err == nil {
			log.SetLevel(level)
		}
	}
}

// readConfig формирует конфигурацию приложения, позволяя переопределить
// значения через переменные окружения.
func readConfig() app.Config {
	cfg := app.DefaultConfig()
	if v := os.Getenv("CRM_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("CRM_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("CRM_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := os.Getenv("CRM_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("CRM_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("CRM_JOBS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.JobsEnabled = enabled
		}
	}
	cfg.HeartbeatInterval = durationEnv("CRM_HEARTBEAT_INTERVAL", cfg.HeartbeatInterval)
	cfg.LowStockInterval = durationEnv("CRM_LOW_STOCK_INTERVAL", cfg.LowStockInterval)
	cfg.ReminderInterval = durationEnv("CRM_REMINDER_INTERVAL", cfg.ReminderInterval)
	cfg.ReportInterval = durationEnv("CRM_REPORT_INTERVAL", cfg.ReportInterval)
	cfg.OutboxPollInterval = durationEnv("CRM_OUTBOX_POLL_INTERVAL", cfg.OutboxPollInterval)
	return cfg
}

func durationEnv(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.WithField("env", name).Warnf("некорректная длительность %q, используем %s", v, fallback)
		return fallback
	}
	return d
}

func main() {
	setupLogger()
	cfg := readConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":    cfg.HTTPAddr,
		"metrics_addr": cfg.MetricsAddr,
		"jobs_enabled": cfg.JobsEnabled,
	}).Info("запускаем CRM service")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("CRM service остановлен")
}
