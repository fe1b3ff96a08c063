package async

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postbeschriftung/extraction/internal/entity"
	"github.com/postbeschriftung/extraction/internal/pipeline"
)

var _ Queue = (*PipelineQueue)(nil)

type stubRunner struct {
	mu   sync.Mutex
	seen []string
}

func (r *stubRunner) Run(_ context.Context, req pipeline.Request) entity.ExtractionResult {
	r.mu.Lock()
	r.seen = append(r.seen, req.Text)
	r.mu.Unlock()
	return entity.ExtractionResult{SuggestedFilename: req.Text + ".pdf"}
}

func TestPipelineQueueProcessesAllJobs(t *testing.T) {
	dir := t.TempDir()
	texts := []string{"alpha", "beta", "gamma"}
	for _, s := range texts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, s+".txt"), []byte(s), 0o644))
	}

	runner := &stubRunner{}
	var mu sync.Mutex
	var outcomes []Outcome
	sink := func(o Outcome) {
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	}

	q := NewPipelineQueue(runner, pipeline.Request{}, sink, nil, WithWorkers(2), WithQueueSize(8))
	ctx := context.Background()
	for _, s := range texts {
		require.NoError(t, q.Enqueue(ctx, Job{
			TextPath: filepath.Join(dir, s+".txt"),
			TraceID:  s + "-trace",
		}))
	}
	q.Shutdown(ctx)

	require.Len(t, outcomes, 3)
	var got []string
	for _, o := range outcomes {
		require.NoError(t, o.Err)
		assert.NotEmpty(t, o.Job.TraceID)
		got = append(got, o.Result.SuggestedFilename)
	}
	sort.Strings(got)
	assert.Equal(t, []string{"alpha.pdf", "beta.pdf", "gamma.pdf"}, got)
}

func TestPipelineQueueReportsUnreadableInput(t *testing.T) {
	runner := &stubRunner{}
	var mu sync.Mutex
	var outcomes []Outcome
	sink := func(o Outcome) {
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	}

	q := NewPipelineQueue(runner, pipeline.Request{}, sink, nil, WithWorkers(1))
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Job{TextPath: filepath.Join(t.TempDir(), "missing.txt")}))
	q.Shutdown(ctx)

	require.Len(t, outcomes, 1)
	assert.Error(t, outcomes[0].Err)
	assert.Empty(t, runner.seen)
}

func TestPipelineQueueEnqueueAfterShutdown(t *testing.T) {
	runner := &stubRunner{}
	q := NewPipelineQueue(runner, pipeline.Request{}, nil, nil, WithWorkers(1))
	ctx := context.Background()
	q.Shutdown(ctx)

	// dropped, not panicking on a closed channel
	require.NoError(t, q.Enqueue(ctx, Job{TextPath: "late.txt"}))
	q.Shutdown(ctx)
}
