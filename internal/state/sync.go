package state

import (
	"sort"

	"github.com/morozRed/apitrail/internal/detect"
)

// Seed carries the fields a new record is created from.
type Seed struct {
	ID   string
	Name string
	Kind string
	File string
}

// SeedsFromEntries converts deduplicated detector output into seeds.
func SeedsFromEntries(entries []detect.Entry) []Seed {
	seeds := make([]Seed, 0, len(entries))
	for _, entry := range entries {
		seeds = append(seeds, Seed{
			ID:   entry.ID,
			Name: entry.Candidate.Name,
			Kind: string(entry.Candidate.Kind),
			File: entry.Candidate.File,
		})
	}
	return seeds
}

// SyncResult describes what a reconciliation changed.
type SyncResult struct {
	// Added lists identities inserted as pending, in seed order.
	Added []string `json:"added"`
	// Vanished lists stored identities absent from the seeds. They are retained.
	Vanished []string `json:"vanished"`
	Total    int      `json:"total"`
}

// Sync inserts unseen identities as pending and leaves every existing record
// untouched. Records are never removed.
func (s *Store) Sync(seeds []Seed) SyncResult {
	if s.Endpoints == nil {
		s.Endpoints = make(map[string]*Record)
	}

	result := SyncResult{Added: []string{}, Vanished: []string{}}
	present := make(map[string]bool, len(seeds))
	for _, seed := range seeds {
		if seed.ID == "" {
			continue
		}
		present[seed.ID] = true
		if _, exists := s.Endpoints[seed.ID]; exists {
			continue
		}
		s.Endpoints[seed.ID] = &Record{
			ID:     seed.ID,
			Name:   seed.Name,
			Kind:   seed.Kind,
			File:   seed.File,
			Status: StatusPending,
		}
		result.Added = append(result.Added, seed.ID)
	}

	for id := range s.Endpoints {
		if !present[id] {
			result.Vanished = append(result.Vanished, id)
		}
	}
	sort.Strings(result.Vanished)

	s.Recount()
	result.Total = s.TotalEndpoints
	return result
}

// NextBatch returns up to size pending records ordered by (file, name, id).
// An empty result means nothing is left to process.
func (s *Store) NextBatch(size int) []Record {
	if size <= 0 {
		return []Record{}
	}
	pending := s.RecordsWithStatus(StatusPending)
	if len(pending) > size {
		pending = pending[:size]
	}
	return pending
}
