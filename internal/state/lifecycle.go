package state

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned for transitions on an unknown identity.
	ErrNotFound = errors.New("endpoint not found")
	// ErrInvalidTransition is returned when a record's status forbids the transition.
	ErrInvalidTransition = errors.New("invalid status transition")
)

func (s *Store) lookup(id string, want Status, op string) (*Record, error) {
	record, ok := s.Endpoints[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if record.Status != want {
		return nil, fmt.Errorf("%w: cannot %s %s while %s", ErrInvalidTransition, op, id, record.Status)
	}
	return record, nil
}

// Claim moves a pending record to in_progress. Only pending records may be
// claimed, which rules out double processing.
func (s *Store) Claim(id string, now time.Time) (Record, error) {
	record, err := s.lookup(id, StatusPending, "claim")
	if err != nil {
		return Record{}, err
	}
	now = now.UTC()
	record.Status = StatusInProgress
	record.StartedAt = &now
	record.CompletedAt = nil
	s.LastRun = &now
	s.Recount()
	return *record, nil
}

// Complete finishes an in-flight record with its artifact reference.
func (s *Store) Complete(id, docFile string, now time.Time) (Record, error) {
	record, err := s.lookup(id, StatusInProgress, "complete")
	if err != nil {
		return Record{}, err
	}
	now = now.UTC()
	record.Status = StatusCompleted
	record.DocFile = &docFile
	record.CompletedAt = &now
	record.ErrorMessage = nil
	s.Recount()
	return *record, nil
}

// Fail records a collaborator failure on an in-flight record.
func (s *Store) Fail(id, message string) (Record, error) {
	record, err := s.lookup(id, StatusInProgress, "fail")
	if err != nil {
		return Record{}, err
	}
	record.Status = StatusFailed
	record.ErrorMessage = &message
	record.RetryCount++
	s.Recount()
	return *record, nil
}

// ResetFailed returns every failed record to pending. Retry counts are kept
// so repeated failure stays observable.
func (s *Store) ResetFailed() int {
	reset := 0
	for _, record := range s.Endpoints {
		if record.Status != StatusFailed {
			continue
		}
		record.Status = StatusPending
		record.ErrorMessage = nil
		reset++
	}
	s.Recount()
	return reset
}

// ResetInProgress returns records stranded in_progress by an interrupted run to pending.
func (s *Store) ResetInProgress() int {
	reset := 0
	for _, record := range s.Endpoints {
		if record.Status != StatusInProgress {
			continue
		}
		record.Status = StatusPending
		record.StartedAt = nil
		reset++
	}
	s.Recount()
	return reset
}
