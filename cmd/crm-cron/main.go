package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/jobs"
)

// config — настройки планировщика периодических задач. Бинарь запускается
// отдельно от crm-service и ходит в его REST API по сети, поэтому единственная
// обязательная настройка — адрес API.
type config struct {
	apiBaseURL        string
	logDir            string
	heartbeatInterval time.Duration
	lowStockInterval  time.Duration
	reminderInterval  time.Duration
	reportInterval    time.Duration
	once              bool
}

func readConfig(args []string) (config, error) {
	cfg := config{
		apiBaseURL:        "http://localhost:8080",
		logDir:            "logs",
		heartbeatInterval: time.Minute,
		lowStockInterval:  5 * time.Minute,
		reminderInterval:  10 * time.Minute,
		reportInterval:    15 * time.Minute,
	}
	if v := os.Getenv("CRM_API_URL"); v != "" {
		cfg.apiBaseURL = v
	}
	if v := os.Getenv("CRM_LOG_DIR"); v != "" {
		cfg.logDir = v
	}
	cfg.heartbeatInterval = durationEnv("CRM_HEARTBEAT_INTERVAL", cfg.heartbeatInterval)
	cfg.lowStockInterval = durationEnv("CRM_LOW_STOCK_INTERVAL", cfg.lowStockInterval)
	cfg.reminderInterval = durationEnv("CRM_REMINDER_INTERVAL", cfg.reminderInterval)
	cfg.reportInterval = durationEnv("CRM_REPORT_INTERVAL", cfg.reportInterval)

	fs := flag.NewFlagSet("crm-cron", flag.ContinueOnError)
	fs.StringVar(&cfg.apiBaseURL, "api-url", cfg.apiBaseURL, "base URL of the CRM REST API")
	fs.StringVar(&cfg.logDir, "log-dir", cfg.logDir, "directory for job log files")
	fs.BoolVar(&cfg.once, "once", false, "run every job once and exit")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	return cfg, nil
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

// jobDefinition связывает задачу с её расписанием и файлом журнала.
type jobDefinition struct {
	name     string
	interval time.Duration
	task     jobs.Task
}

func buildJobs(cfg config) []jobDefinition {
	client := jobs.NewClient(cfg.apiBaseURL, jobs.WithClientLogger(log.WithField("component", "jobs-client")))

	logbook := func(name string) *jobs.Logbook {
		return jobs.NewLogbook(filepath.Join(cfg.logDir, name))
	}

	return []jobDefinition{
		{jobs.JobHeartbeat, cfg.heartbeatInterval, jobs.Heartbeat(client, logbook("crm_heartbeat_log.txt"))},
		{jobs.JobLowStock, cfg.lowStockInterval, jobs.LowStockRestock(client, logbook("low_stock_updates_log.txt"))},
		{jobs.JobOrderReminders, cfg.reminderInterval, jobs.OrderReminders(client, logbook("order_reminders_log.txt"))},
		{jobs.JobReport, cfg.reportInterval, jobs.Report(client, logbook("crm_report_log.txt"))},
	}
}

// runOnce прогоняет все задачи по одному разу. Ошибки логируются, но не
// прерывают остальные задачи; ненулевой результат означает хотя бы один сбой.
func runOnce(ctx context.Context, definitions []jobDefinition) bool {
	failed := false
	for _, def := range definitions {
		if err := def.task(ctx); err != nil {
			log.WithError(err).WithField("job", def.name).Error("задача завершилась с ошибкой")
			failed = true
		}
	}
	return failed
}

func runScheduler(ctx context.Context, definitions []jobDefinition) {
	var workers sync.WaitGroup
	for _, def := range definitions {
		worker := jobs.NewWorker(def.name, def.interval, def.task, jobs.WithRunAtStart())
		workers.Add(1)
		go func() {
			defer workers.Done()
			worker.Run(ctx)
		}()
	}
	workers.Wait()
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if v := os.Getenv("CRM_LOG_LEVEL"); v != "" {
		if level, err := log.ParseLevel(v); err == nil {
			log.SetLevel(level)
		}
	}

	cfg, err := readConfig(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"api_url": cfg.apiBaseURL,
		"log_dir": cfg.logDir,
		"once":    cfg.once,
	}).Info("запускаем CRM cron")

	definitions := buildJobs(cfg)

	if cfg.once {
		if runOnce(ctx, definitions) {
			os.Exit(1)
		}
		return
	}

	runScheduler(ctx, definitions)
	log.Info("CRM cron остановлен")
}
