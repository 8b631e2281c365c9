package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/morozRed/apitrail/internal/source"
	"github.com/morozRed/apitrail/internal/state"
	"golang.org/x/time/rate"
)

// Runner drives one batch of endpoints through the collaborator and records
// every outcome in the progress store.
type Runner struct {
	store        *state.Manager
	collaborator Collaborator
	outputDir    string
	limiter      *rate.Limiter
	sources      *source.Pass
	now          func() time.Time
}

// NewRunner builds a runner writing artifacts into outputDir. A requestsPerMinute
// of zero or less disables throttling.
func NewRunner(store *state.Manager, collaborator Collaborator, outputDir string, requestsPerMinute int) *Runner {
	r := &Runner{
		store:        store,
		collaborator: collaborator,
		outputDir:    outputDir,
		now:          time.Now,
	}
	if requestsPerMinute > 0 {
		r.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return r
}

// SetSources lets the runner fingerprint owning files into artifact front matter.
func (r *Runner) SetSources(sources *source.Pass) {
	r.sources = sources
}

// SetClock replaces the time source used for artifact names, for tests.
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// RunBatch processes up to size pending endpoints. Collaborator, validation
// and write failures are recorded as failed records and do not stop the
// batch; store errors do. A cancelled context stops before the next claim.
func (r *Runner) RunBatch(ctx context.Context, size int) (*BatchResult, error) {
	result := &BatchResult{
		RunID:   uuid.NewString(),
		Results: []ItemResult{},
	}

	batch, err := r.store.NextBatch(size)
	if err != nil {
		return nil, fmt.Errorf("failed to select batch: %w", err)
	}
	if len(batch) == 0 {
		result.Status = StatusCompleted
		return r.finish(result)
	}
	result.Status = StatusInProgress
	slog.Info("analyze.batch", "run", result.RunID, "size", len(batch))

	for _, record := range batch {
		if ctx.Err() != nil {
			result.Stopped = true
			break
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				result.Stopped = true
				break
			}
		}

		claimed, err := r.store.Claim(record.ID)
		if err != nil {
			if errors.Is(err, state.ErrInvalidTransition) || errors.Is(err, state.ErrNotFound) {
				slog.Warn("analyze.skip", "endpoint", record.ID, "error", err)
				continue
			}
			return nil, fmt.Errorf("failed to claim %s: %w", record.ID, err)
		}

		item, err := r.process(ctx, claimed, result.RunID)
		if err != nil {
			return nil, err
		}
		result.Analyzed++
		if !item.Success {
			result.Failed++
		}
		result.Results = append(result.Results, item)
	}

	return r.finish(result)
}

func (r *Runner) process(ctx context.Context, record state.Record, runID string) (ItemResult, error) {
	item := ItemResult{ID: record.ID, Endpoint: record.Name}
	start := time.Now()

	docFile, err := r.produce(ctx, record, runID)
	if err != nil {
		if _, failErr := r.store.Fail(record.ID, err.Error()); failErr != nil {
			return item, fmt.Errorf("failed to record failure for %s: %w", record.ID, failErr)
		}
		slog.Warn("analyze.failed", "endpoint", record.ID, "error", err)
		item.Error = err.Error()
		return item, nil
	}

	if _, err := r.store.Complete(record.ID, docFile); err != nil {
		return item, fmt.Errorf("failed to complete %s: %w", record.ID, err)
	}
	slog.Info("analyze.done", "endpoint", record.ID, "doc", docFile, "elapsed", time.Since(start).Round(time.Millisecond))
	item.Success = true
	item.DocFile = docFile
	return item, nil
}

func (r *Runner) produce(ctx context.Context, record state.Record, runID string) (string, error) {
	text, err := r.collaborator.Produce(ctx, contextFor(record))
	if err != nil {
		return "", err
	}
	if err := ValidateDocument(text); err != nil {
		return "", err
	}
	now := r.now()
	return WriteDocument(r.outputDir, newFrontMatter(record, runID, r.sourceHash(record.File), now), text, now)
}

func (r *Runner) sourceHash(path string) string {
	if r.sources == nil {
		return ""
	}
	file, err := r.sources.Read(path)
	if err != nil || file == nil {
		return ""
	}
	return file.Hash
}

func (r *Runner) finish(result *BatchResult) (*BatchResult, error) {
	summary, err := r.store.Summary()
	if err != nil {
		return nil, fmt.Errorf("failed to summarise progress: %w", err)
	}
	result.Summary = summary
	return result, nil
}
