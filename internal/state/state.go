package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/morozRed/apitrail/internal/fileutil"
)

const CurrentStoreVersion = "2"

// Status is the lifecycle position of one endpoint record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// Record tracks documentation progress for one endpoint identity.
type Record struct {
	ID           string     `json:"endpoint_id"`
	Name         string     `json:"endpoint_name"`
	Kind         string     `json:"endpoint_type"`
	File         string     `json:"file_path"`
	Status       Status     `json:"status"`
	DocFile      *string    `json:"doc_file"`
	StartedAt    *time.Time `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	ErrorMessage *string    `json:"error_message"`
	RetryCount   int        `json:"retry_count"`
}

// Project identifies the tree a store belongs to.
type Project struct {
	Name      string
	CodeDir   string
	OutputDir string
}

// NewProject derives the project name from the code directory.
func NewProject(codeDir, outputDir string) Project {
	return Project{
		Name:      filepath.Base(filepath.Clean(codeDir)),
		CodeDir:   codeDir,
		OutputDir: outputDir,
	}
}

// Store is the persisted progress document. Counters are derived from
// Endpoints and rewritten by Recount before every save.
type Store struct {
	Version         string             `json:"version"`
	ProjectName     string             `json:"project_name"`
	CodeDir         string             `json:"code_dir"`
	OutputDir       string             `json:"output_dir"`
	TotalEndpoints  int                `json:"total_endpoints"`
	CompletedCount  int                `json:"completed_count"`
	FailedCount     int                `json:"failed_count"`
	PendingCount    int                `json:"pending_count"`
	InProgressCount int                `json:"in_progress_count"`
	LastRun         *time.Time         `json:"last_run"`
	CreatedAt       time.Time          `json:"created_at"`
	Endpoints       map[string]*Record `json:"endpoints"`
}

// NewStore creates an empty store for project.
func NewStore(project Project, now time.Time) *Store {
	return &Store{
		Version:     CurrentStoreVersion,
		ProjectName: project.Name,
		CodeDir:     project.CodeDir,
		OutputDir:   project.OutputDir,
		CreatedAt:   now.UTC(),
		Endpoints:   make(map[string]*Record),
	}
}

// CorruptError reports a progress document that exists but cannot be used.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("progress store %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// IsCorrupt reports whether err came from an unusable progress document.
func IsCorrupt(err error) bool {
	var corrupt *CorruptError
	return errors.As(err, &corrupt)
}

// Load reads the store at path. A missing file yields a fresh store; an
// unreadable or malformed one yields a *CorruptError.
func Load(path string, project Project, now time.Time) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewStore(project, now), nil
		}
		return nil, &CorruptError{Path: path, Err: err}
	}
	store, err := Decode(data)
	if err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	store.fillProject(project)
	return store, nil
}

// Decode parses and validates a progress document.
func Decode(data []byte) (*Store, error) {
	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, err
	}
	if err := migrateStore(&store); err != nil {
		return nil, err
	}
	return &store, nil
}

// Encode recounts and renders the document exactly as Save writes it.
func (s *Store) Encode() ([]byte, error) {
	if s.Version == "" {
		s.Version = CurrentStoreVersion
	}
	if s.Endpoints == nil {
		s.Endpoints = make(map[string]*Record)
	}
	s.Recount()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Save recounts and atomically replaces the document at path.
// It never touches timestamps, so save→load→save is byte-identical.
func (s *Store) Save(path string) error {
	data, err := s.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode progress store: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save progress store: %w", err)
	}
	return nil
}

// Recount recomputes every counter from the record set. Pending covers all
// outstanding work, in-flight records included, so completed + failed +
// pending always equals total.
func (s *Store) Recount() {
	s.TotalEndpoints = len(s.Endpoints)
	s.CompletedCount = 0
	s.FailedCount = 0
	s.InProgressCount = 0
	for _, record := range s.Endpoints {
		switch record.Status {
		case StatusCompleted:
			s.CompletedCount++
		case StatusFailed:
			s.FailedCount++
		case StatusInProgress:
			s.InProgressCount++
		}
	}
	s.PendingCount = s.TotalEndpoints - s.CompletedCount - s.FailedCount
}

// Summary is a read-only view of store progress.
type Summary struct {
	ProjectName     string     `json:"project_name"`
	CodeDir         string     `json:"code_dir"`
	OutputDir       string     `json:"output_dir"`
	Total           int        `json:"total_endpoints"`
	Completed       int        `json:"completed"`
	Pending         int        `json:"pending"`
	InProgress      int        `json:"in_progress"`
	Failed          int        `json:"failed"`
	ProgressPercent float64    `json:"progress_percent"`
	LastRun         *time.Time `json:"last_run"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (s *Store) Summary() Summary {
	s.Recount()
	total := s.TotalEndpoints
	if total < 1 {
		total = 1
	}
	percent := math.Round(float64(s.CompletedCount)/float64(total)*1000) / 10
	return Summary{
		ProjectName:     s.ProjectName,
		CodeDir:         s.CodeDir,
		OutputDir:       s.OutputDir,
		Total:           s.TotalEndpoints,
		Completed:       s.CompletedCount,
		Pending:         s.PendingCount,
		InProgress:      s.InProgressCount,
		Failed:          s.FailedCount,
		ProgressPercent: percent,
		LastRun:         s.LastRun,
		CreatedAt:       s.CreatedAt,
	}
}

// Record returns a copy of the record for id.
func (s *Store) Record(id string) (Record, bool) {
	record, ok := s.Endpoints[id]
	if !ok {
		return Record{}, false
	}
	return *record, true
}

// RecordsWithStatus returns copies of matching records ordered by (file, name, id).
func (s *Store) RecordsWithStatus(status Status) []Record {
	out := make([]Record, 0)
	for _, record := range s.Endpoints {
		if record.Status == status {
			out = append(out, *record)
		}
	}
	sortRecords(out)
	return out
}

// CompletedDocs lists artifact references of completed records.
func (s *Store) CompletedDocs() []string {
	docs := make([]string, 0)
	for _, record := range s.RecordsWithStatus(StatusCompleted) {
		if record.DocFile != nil && *record.DocFile != "" {
			docs = append(docs, *record.DocFile)
		}
	}
	return docs
}

func (s *Store) fillProject(project Project) {
	if s.ProjectName == "" {
		s.ProjectName = project.Name
	}
	if s.CodeDir == "" {
		s.CodeDir = project.CodeDir
	}
	if s.OutputDir == "" {
		s.OutputDir = project.OutputDir
	}
}

func sortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].File != records[j].File {
			return records[i].File < records[j].File
		}
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].ID < records[j].ID
	})
}

func migrateStore(s *Store) error {
	if s.Endpoints == nil {
		s.Endpoints = make(map[string]*Record)
	}

	switch s.Version {
	case "", "1", "1.0":
		s.Version = CurrentStoreVersion
	case CurrentStoreVersion:
		// no-op
	default:
		// Keep unknown versions untouched; the record checks below still apply.
	}

	for id, record := range s.Endpoints {
		if record == nil {
			return fmt.Errorf("endpoint %q has no record", id)
		}
		if record.ID == "" {
			record.ID = id
		}
		if record.ID != id {
			return fmt.Errorf("endpoint key %q does not match record id %q", id, record.ID)
		}
		if !record.Status.Valid() {
			return fmt.Errorf("endpoint %q has unknown status %q", id, record.Status)
		}
		if record.RetryCount < 0 {
			return fmt.Errorf("endpoint %q has negative retry count", id)
		}
	}
	return nil
}
