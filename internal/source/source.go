package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/morozRed/apitrail/internal/fileutil"
)

// ErrOutsideRoot is returned when a path resolves outside the project root.
var ErrOutsideRoot = errors.New("path escapes project root")

// binarySniffLen bounds how much of a file is inspected for NUL bytes.
const binarySniffLen = 8000

// File is an immutable snapshot of one source file.
type File struct {
	Path     string
	RelPath  string
	Content  string
	Language string
	Size     int
	Hash     string
	Binary   bool
}

// Classifier maps a path to a language tag.
type Classifier func(path string) string

// Pass owns the file cache for a single detection pass.
type Pass struct {
	root     string
	classify Classifier

	mu    sync.Mutex
	files map[string]*File
}

func NewPass(root string, classify Classifier) (*Pass, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %q: %w", root, err)
	}
	return &Pass{
		root:     filepath.Clean(abs),
		classify: classify,
		files:    make(map[string]*File),
	}, nil
}

func (p *Pass) Root() string {
	return p.root
}

// Resolve maps a root-relative (or absolute) path to an absolute path inside root.
func (p *Pass) Resolve(path string) (string, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(p.root, full)
	}
	full = filepath.Clean(full)

	rel, err := filepath.Rel(p.root, full)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return full, nil
}

// Read returns the cached snapshot for path, reading it on first access.
// A missing file returns (nil, nil).
func (p *Pass) Read(path string) (*File, error) {
	full, err := p.Resolve(path)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(p.root, full)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	p.mu.Lock()
	cached, ok := p.files[rel]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}

	file := newFile(full, rel, data, p.classify)

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.files[rel]; ok {
		return existing, nil
	}
	p.files[rel] = file
	return file, nil
}

// Len reports how many files the pass has cached.
func (p *Pass) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.files)
}

func newFile(full, rel string, data []byte, classify Classifier) *File {
	sniff := data
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	binary := bytes.IndexByte(sniff, 0) >= 0

	content := ""
	if !binary {
		content = string(data)
		if !utf8.ValidString(content) {
			content = strings.ToValidUTF8(content, "")
		}
	}

	language := "unknown"
	if classify != nil {
		language = classify(full)
	}

	return &File{
		Path:     full,
		RelPath:  rel,
		Content:  content,
		Language: language,
		Size:     len(data),
		Hash:     fileutil.HashContent(data),
		Binary:   binary,
	}
}

// NewFile builds a snapshot from in-memory content.
func NewFile(relPath, language, content string) *File {
	return &File{
		Path:     relPath,
		RelPath:  filepath.ToSlash(relPath),
		Content:  content,
		Language: language,
		Size:     len(content),
		Hash:     fileutil.HashContent([]byte(content)),
	}
}
