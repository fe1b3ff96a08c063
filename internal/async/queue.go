package async

import (
	"context"
	"time"
)

// Job is one document to push through the extraction pipeline. Extend as
// needed later (priority, retry, etc).
type Job struct {
	TextPath    string
	ImagePath   string // optional rendered first page
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
