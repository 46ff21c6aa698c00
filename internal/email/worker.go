package email

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/devzoku/devzoku-api/internal/metrics"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/queue"
	"github.com/devzoku/devzoku-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	dequeueTimeout = 2 * time.Second
	dlqBatchSize   = 50
)

// Worker consumes email jobs with a fixed number of goroutines.
type Worker struct {
	queue       queue.Queue
	renderer    *Renderer
	sender      Sender
	deadLetters repository.FailedEmailJobRepository
	concurrency int
	maxAttempts int
	now         func() time.Time
	log         *zap.Logger
}

// WorkerConfig wires a Worker.
type WorkerConfig struct {
	Queue       queue.Queue
	Renderer    *Renderer
	Sender      Sender
	DeadLetters repository.FailedEmailJobRepository
	Concurrency int
	MaxAttempts int
	Now         func() time.Time
	Logger      *zap.Logger
}

func NewWorker(cfg WorkerConfig) *Worker {
	w := &Worker{
		queue:       cfg.Queue,
		renderer:    cfg.Renderer,
		sender:      cfg.Sender,
		deadLetters: cfg.DeadLetters,
		concurrency: cfg.Concurrency,
		maxAttempts: cfg.MaxAttempts,
		now:         cfg.Now,
		log:         cfg.Logger,
	}
	if w.concurrency <= 0 {
		w.concurrency = 1
	}
	if w.maxAttempts <= 0 {
		w.maxAttempts = 1
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}
	w.log = w.log.Named("email_worker")
	return w
}

// Run blocks until ctx is cancelled. Jobs already taken are finished first.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("Email worker started", zap.Int("concurrency", w.concurrency), zap.Int("max_attempts", w.maxAttempts))

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			w.loop(ctx, slot)
		}(i)
	}
	wg.Wait()

	w.log.Info("Email worker stopped")
}

func (w *Worker) loop(ctx context.Context, slot int) {
	for {
		if ctx.Err() != nil {
			return
		}

		job, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, queue.ErrQueueClosed) {
				return
			}
			w.log.Error("Failed to dequeue email job", zap.Int("slot", slot), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if job == nil {
			continue
		}

		// Finish the job even if shutdown starts mid-send.
		w.Process(context.WithoutCancel(ctx), *job)
	}
}

// Process delivers one job. A failed attempt is re-enqueued until
// MaxAttempts is reached, then the job is dead-lettered.
func (w *Worker) Process(ctx context.Context, job queue.Job) {
	job.Attempts++

	err := w.deliver(ctx, job)
	if err == nil {
		metrics.EmailJobs.WithLabelValues(string(job.Name), metrics.ResultOK).Inc()
		w.log.Debug("Email sent", zap.String("job", string(job.Name)), zap.String("job_id", job.ID))
		return
	}

	w.log.Warn("Email job failed",
		zap.String("job", string(job.Name)),
		zap.String("job_id", job.ID),
		zap.Int("attempt", job.Attempts),
		zap.Error(err),
	)

	if job.Attempts < w.maxAttempts {
		enqueueErr := w.queue.Enqueue(ctx, job)
		if enqueueErr == nil {
			metrics.EmailJobs.WithLabelValues(string(job.Name), metrics.ResultRetried).Inc()
			return
		}
		w.log.Error("Failed to re-enqueue email job", zap.String("job_id", job.ID), zap.Error(enqueueErr))
	}

	metrics.EmailJobs.WithLabelValues(string(job.Name), metrics.ResultFailed).Inc()
	w.deadLetter(ctx, job, err)
}

func (w *Worker) deliver(ctx context.Context, job queue.Job) error {
	msg, err := BuildMessage(w.renderer, job)
	if err != nil {
		return err
	}
	return w.sender.Send(ctx, msg)
}

func (w *Worker) deadLetter(ctx context.Context, job queue.Job, cause error) {
	metrics.EmailDLQ.Inc()
	record := models.FailedEmailJob{
		JobID:     job.ID,
		JobName:   string(job.Name),
		Payload:   datatypes.JSON(job.Payload),
		Attempts:  job.Attempts,
		LastError: cause.Error(),
	}
	if err := w.deadLetters.Create(ctx, &record); err != nil {
		w.log.Error("Failed to insert email job into DLQ", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	w.log.Warn("Email job moved to DLQ", zap.String("job_id", job.ID), zap.Uint64("dlq_id", record.ID))
}

// RetryDLQ re-enqueues unresolved dead letters every interval until ctx is done.
func (w *Worker) RetryDLQ(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.RetryDLQOnce(ctx); err != nil {
				w.log.Error("DLQ retry failed", zap.Error(err))
			}
		}
	}
}

// RetryDLQOnce re-enqueues one batch of dead letters with a fresh attempt
// budget and returns how many were re-enqueued.
func (w *Worker) RetryDLQOnce(ctx context.Context) (int, error) {
	records, err := w.deadLetters.ListUnresolved(ctx, dlqBatchSize)
	if err != nil {
		return 0, err
	}

	retried := 0
	for _, d := range records {
		job := queue.Job{
			ID:         d.JobID,
			Name:       queue.JobName(d.JobName),
			Payload:    []byte(d.Payload),
			EnqueuedAt: w.now(),
		}
		if err := w.queue.Enqueue(ctx, job); err != nil {
			return retried, err
		}
		if err := w.deadLetters.MarkResolved(ctx, d.ID, w.now()); err != nil {
			return retried, err
		}
		retried++
		w.log.Info("DLQ job re-enqueued", zap.Uint64("dlq_id", d.ID), zap.String("job_id", d.JobID))
	}
	return retried, nil
}
