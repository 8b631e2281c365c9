package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/morozRed/apitrail/internal/config"
	"github.com/morozRed/apitrail/internal/detect"
	"github.com/morozRed/apitrail/internal/ignore"
	"github.com/morozRed/apitrail/internal/languages"
	"github.com/morozRed/apitrail/internal/source"
)

// Issue is a non-fatal problem met while enumerating or reading files.
type Issue struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// Result is the outcome of one detection pass over a tree.
type Result struct {
	Root       string         `json:"root"`
	Files      []string       `json:"files"`
	ByLanguage map[string]int `json:"by_language"`
	Candidates int            `json:"candidates"`
	Endpoints  []detect.Entry `json:"endpoints"`
	Issues     []Issue        `json:"issues,omitempty"`
}

// Identities returns endpoint identities in detection order.
func (r *Result) Identities() []string {
	ids := make([]string, 0, len(r.Endpoints))
	for _, entry := range r.Endpoints {
		ids = append(ids, entry.ID)
	}
	return ids
}

// CountByKind tallies deduplicated endpoints per kind.
func (r *Result) CountByKind() map[detect.Kind]int {
	counts := make(map[detect.Kind]int)
	for _, entry := range r.Endpoints {
		counts[entry.Candidate.Kind]++
	}
	return counts
}

// ProgressFunc is called once per processed file with the running count and
// the number of files in the pass.
type ProgressFunc func(file string, done, total int)

// Scanner enumerates a code tree and runs detection over every code file.
type Scanner struct {
	cfg      *config.Config
	matcher  *ignore.Matcher
	detector *detect.Detector
	skipDirs []string

	Progress ProgressFunc
}

// New prepares a scanner for cfg.CodeDir. cfg must already be resolved.
func New(cfg *config.Config) (*Scanner, error) {
	matcher, err := ignore.Load(cfg.CodeDir, cfg.IgnoreDirs, cfg.IgnoreRules)
	if err != nil {
		return nil, err
	}

	s := &Scanner{
		cfg:      cfg,
		matcher:  matcher,
		detector: detect.NewDetector(languages.NewDefaultRegistry(), cfg.Detection.FunctionWindow),
	}
	// Generated artifacts and the progress document never feed back into detection.
	if cfg.OutputDir != "" {
		if rel, err := filepath.Rel(cfg.CodeDir, cfg.OutputDir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			s.skipDirs = append(s.skipDirs, filepath.ToSlash(rel))
		}
	}
	return s, nil
}

// Files enumerates candidate code files under the root in lexical order.
func (s *Scanner) Files() ([]string, []Issue, error) {
	root := s.cfg.CodeDir
	var files []string
	var issues []Issue

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if err != nil {
			issues = append(issues, Issue{File: rel, Message: fmt.Sprintf("walk error: %v", err)})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if s.cfg.ShouldIgnoreDir(d.Name()) || s.matcher.ShouldIgnore(rel, true) || s.skipped(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if !s.cfg.IsValidCodeFile(path) || s.matcher.ShouldIgnore(rel, false) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, issues, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, issues, nil
}

func (s *Scanner) skipped(rel string) bool {
	for _, dir := range s.skipDirs {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}

// Run detects endpoints across the tree. Files are processed in parallel and
// their candidates assembled in enumeration order before deduplication.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	files, issues, err := s.Files()
	if err != nil {
		return nil, err
	}

	pass, err := source.NewPass(s.cfg.CodeDir, languages.Classify)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Root:       s.cfg.CodeDir,
		Files:      files,
		ByLanguage: make(map[string]int),
		Issues:     issues,
	}
	for _, rel := range files {
		result.ByLanguage[languages.Classify(rel)]++
	}

	perFile := make([][]detect.Candidate, len(files))
	var (
		mu   sync.Mutex
		done int
	)

	workers := s.cfg.Detection.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			file, err := pass.Read(rel)
			if err != nil {
				slog.Debug("scan.read_failed", "file", rel, "error", err)
				mu.Lock()
				result.Issues = append(result.Issues, Issue{File: rel, Message: err.Error()})
				mu.Unlock()
			} else {
				perFile[i] = s.detector.Collect(file)
			}

			mu.Lock()
			done++
			if s.Progress != nil {
				s.Progress(rel, done, len(files))
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	deduper := detect.NewDeduper()
	for i, candidates := range perFile {
		if len(candidates) > 0 {
			slog.Debug("scan.file", "file", files[i], "candidates", len(candidates))
		}
		for _, candidate := range candidates {
			result.Candidates++
			deduper.Add(candidate)
		}
	}
	result.Endpoints = deduper.Entries()

	sort.Slice(result.Issues, func(i, j int) bool {
		if result.Issues[i].File == result.Issues[j].File {
			return result.Issues[i].Message < result.Issues[j].Message
		}
		return result.Issues[i].File < result.Issues[j].File
	})

	slog.Info("scan.complete",
		"root", result.Root,
		"files", len(files),
		"candidates", result.Candidates,
		"endpoints", len(result.Endpoints),
	)
	return result, nil
}
