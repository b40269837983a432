package app

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/crm/internal/health"
	"github.com/vladislavdragonenkov/crm/internal/jobs"
	"github.com/vladislavdragonenkov/crm/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/crm/internal/service/crm"
	"github.com/vladislavdragonenkov/crm/internal/service/outbox"
	"github.com/vladislavdragonenkov/crm/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/crm/internal/version"
)

// Run собирает зависимости и запускает REST API, сервер метрик,
// outbox worker и периодические задачи. Блокируется до отмены ctx
// или фатальной ошибки HTTP-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	mutations := crm.NewMutations(
		deps.Customers,
		deps.Products,
		deps.Orders,
		deps.Outbox,
		logger.WithField("layer", "service"),
	)
	queries := crm.NewQueries(
		deps.Customers,
		deps.Products,
		deps.Orders,
		logger.WithField("layer", "service"),
	)

	// Kafka опционален: без брокеров события копятся в outbox.
	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	var workers sync.WaitGroup

	if kafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(kafkaProducer, "")
		worker := outbox.NewWorker(
			deps.Outbox,
			publisher,
			outbox.WithDLQPublisher(kafka.NewDLQPublisher(kafkaProducer)),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
		)
		workers.Add(1)
		go func() {
			defer workers.Done()
			worker.Run(workerCtx)
		}()
	}

	if cfg.JobsEnabled {
		startJobs(workerCtx, &workers, cfg, logger)
	}

	healthHandler := healthcheck.NewHandler(version.String())
	if deps.Store != nil {
		store := deps.Store
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Ping(pingCtx)
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	server := httpapi.NewServer(mutations, queries, logger.WithField("layer", "http"))
	apiSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("REST API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем сервер")
		shutdownHTTP(apiSrv, logger)
		cancelWorkers()
		workers.Wait()
		shutdownHTTP(metricsSrv, logger)
		closeKafka(kafkaProducer, logger)
		return ctx.Err()
	case err := <-errCh:
		cancelWorkers()
		workers.Wait()
		shutdownHTTP(metricsSrv, logger)
		closeKafka(kafkaProducer, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startJobs запускает периодические задачи поверх REST API.
func startJobs(ctx context.Context, workers *sync.WaitGroup, cfg Config, logger *log.Entry) {
	client := jobs.NewClient(apiBaseURL(cfg), jobs.WithClientLogger(logger.WithField("component", "jobs-client")))

	logbook := func(name string) *jobs.Logbook {
		return jobs.NewLogbook(filepath.Join(cfg.LogDir, name))
	}

	definitions := []struct {
		name     string
		interval time.Duration
		task     jobs.Task
	}{
		{jobs.JobHeartbeat, cfg.HeartbeatInterval, jobs.Heartbeat(client, logbook("crm_heartbeat_log.txt"))},
		{jobs.JobLowStock, cfg.LowStockInterval, jobs.LowStockRestock(client, logbook("low_stock_updates_log.txt"))},
		{jobs.JobOrderReminders, cfg.ReminderInterval, jobs.OrderReminders(client, logbook("order_reminders_log.txt"))},
		{jobs.JobReport, cfg.ReportInterval, jobs.Report(client, logbook("crm_report_log.txt"))},
	}

	for _, def := range definitions {
		worker := jobs.NewWorker(def.name, def.interval, def.task,
			jobs.WithWorkerLogger(logger.WithField("job", def.name)))
		workers.Add(1)
		go func(w *jobs.Worker) {
			defer workers.Done()
			w.Run(ctx)
		}(worker)
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez", addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
