package enrich

import (
	"context"

	"github.com/morozRed/apitrail/internal/state"
)

const (
	StatusCompleted  = "completed"
	StatusInProgress = "in_progress"
)

// EndpointContext is what a collaborator is told about the endpoint it documents.
type EndpointContext struct {
	ID   string
	Name string
	Kind string
	File string
	// Attempt is 1 on the first try and grows with every recorded failure.
	Attempt int
}

// Collaborator produces markdown documentation for one endpoint.
type Collaborator interface {
	Produce(ctx context.Context, endpoint EndpointContext) (string, error)
}

// CollaboratorFunc adapts a function to Collaborator.
type CollaboratorFunc func(ctx context.Context, endpoint EndpointContext) (string, error)

func (f CollaboratorFunc) Produce(ctx context.Context, endpoint EndpointContext) (string, error) {
	return f(ctx, endpoint)
}

type ItemResult struct {
	ID       string `json:"endpoint_id"`
	Endpoint string `json:"endpoint"`
	Success  bool   `json:"success"`
	DocFile  string `json:"doc_file,omitempty"`
	Error    string `json:"error,omitempty"`
}

// BatchResult reports one RunBatch call. Status is StatusCompleted when no
// pending work was found, StatusInProgress otherwise.
type BatchResult struct {
	RunID    string        `json:"run_id"`
	Status   string        `json:"status"`
	Analyzed int           `json:"analyzed"`
	Failed   int           `json:"failed"`
	Stopped  bool          `json:"stopped,omitempty"`
	Results  []ItemResult  `json:"results"`
	Summary  state.Summary `json:"summary"`
}

func contextFor(record state.Record) EndpointContext {
	return EndpointContext{
		ID:      record.ID,
		Name:    record.Name,
		Kind:    record.Kind,
		File:    record.File,
		Attempt: record.RetryCount + 1,
	}
}
