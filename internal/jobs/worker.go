package jobs

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

var jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "crm_job_runs_total",
	Help: "Total number of periodic job runs grouped by job and result.",
}, []string{"job", "result"})

// Task — один запуск периодической задачи.
type Task func(ctx context.Context) error

// Worker запускает задачу по тикеру. Защиты от перекрытия запусков нет:
// запуски последовательны внутри одного воркера, а расписания задач
// достаточно разрежены.
type Worker struct {
	name       string
	task       Task
	interval   time.Duration
	logger     *log.Entry
	runAtStart bool
}

// WorkerOption настраивает Worker.
type WorkerOption func(*Worker)

// WithWorkerLogger задаёт logger воркера.
func WithWorkerLogger(logger *log.Entry) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithRunAtStart включает немедленный первый запуск, не дожидаясь тика.
func WithRunAtStart() WorkerOption {
	return func(w *Worker) {
		w.runAtStart = true
	}
}

// NewWorker создаёт воркера периодической задачи.
func NewWorker(name string, interval time.Duration, task Task, options ...WorkerOption) *Worker {
	worker := &Worker{
		name:     name,
		task:     task,
		interval: interval,
		logger:   log.WithField("component", "job-"+name),
	}
	for _, option := range options {
		option(worker)
	}
	return worker
}

// Run гоняет задачу до отмены ctx.
func (w *Worker) Run(ctx context.Context) {
	if w.task == nil || w.interval <= 0 {
		w.logger.Warn("job worker is disabled: no task or non-positive interval")
		return
	}

	if w.runAtStart {
		w.runOnce(ctx)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	err := w.task(ctx)
	duration := time.Since(start)

	if err != nil {
		jobRuns.WithLabelValues(w.name, "error").Inc()
		w.logger.WithError(err).WithField("duration", duration).Warn("job run failed")
		return
	}

	jobRuns.WithLabelValues(w.name, "success").Inc()
	w.logger.WithField("duration", duration).Debug("job run finished")
}
