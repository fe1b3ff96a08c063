package async

import (
	"context"
	"os"
	"sync"
	"time"

	"log/slog"

	"github.com/postbeschriftung/extraction/internal/entity"
	"github.com/postbeschriftung/extraction/internal/pipeline"
)

// Runner is the slice of pipeline.Pipeline the queue needs.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) entity.ExtractionResult
}

// Outcome pairs a job with its extraction result. Err is set when the
// input files could not be read; the pipeline itself never fails.
type Outcome struct {
	Job    Job
	Result entity.ExtractionResult
	Err    error
}

// PipelineQueue fans jobs out to a fixed worker pool. Each worker reads the
// job's files, runs the pipeline and hands the outcome to the sink. The sink
// may be called from multiple goroutines.
type PipelineQueue struct {
	runner  Runner
	sink    func(Outcome)
	logger  *slog.Logger
	shared  pipeline.Request
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*PipelineQueue)

func WithWorkers(n int) Option {
	return func(q *PipelineQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *PipelineQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *PipelineQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// NewPipelineQueue starts the workers immediately. shared carries the
// registry and vendor aliases every job runs against; per-job text and
// image are filled in from the job's paths.
func NewPipelineQueue(runner Runner, shared pipeline.Request, sink func(Outcome),
	logger *slog.Logger, opts ...Option) *PipelineQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &PipelineQueue{
		runner:  runner,
		sink:    sink,
		logger:  logger,
		shared:  shared,
		workers: 4,
		timeout: 2 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *PipelineQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					out := q.process(ctx, job)
					cancel()

					if out.Err != nil {
						q.logger.Error("processing failed", "worker_id", workerID,
							"text_path", job.TextPath, "trace_id", job.TraceID, "error", out.Err)
					} else {
						q.logger.Info("processed document", "worker_id", workerID,
							"text_path", job.TextPath, "trace_id", job.TraceID,
							"filename", out.Result.SuggestedFilename)
					}
					if q.sink != nil {
						q.sink(out)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *PipelineQueue) process(ctx context.Context, job Job) Outcome {
	text, err := os.ReadFile(job.TextPath)
	if err != nil {
		return Outcome{Job: job, Err: err}
	}
	var image []byte
	if job.ImagePath != "" {
		image, err = os.ReadFile(job.ImagePath)
		if err != nil {
			return Outcome{Job: job, Err: err}
		}
	}

	req := q.shared
	req.Text = string(text)
	req.PageImage = image
	return Outcome{Job: job, Result: q.runner.Run(ctx, req)}
}

func (q *PipelineQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "text_path", job.TextPath)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued document", "text_path", job.TextPath, "trace_id", job.TraceID)
	default:
		q.logger.Warn("queue full, applying backpressure", "text_path", job.TextPath)
		q.ch <- job
	}
	return nil
}

func (q *PipelineQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
