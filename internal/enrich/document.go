package enrich

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/morozRed/apitrail/internal/fileutil"
	"github.com/morozRed/apitrail/internal/state"
	"gopkg.in/yaml.v3"
)

const docTimeLayout = "20060102_150405"

// FrontMatter is the YAML header written at the top of every artifact.
type FrontMatter struct {
	EndpointID   string `yaml:"endpoint_id"`
	EndpointName string `yaml:"endpoint_name"`
	EndpointType string `yaml:"endpoint_type"`
	FilePath     string `yaml:"file_path"`
	GeneratedAt  string `yaml:"generated_at"`
	RunID        string `yaml:"run_id,omitempty"`
	// SourceHash fingerprints the owning file as it was when documented.
	SourceHash string `yaml:"source_hash,omitempty"`
}

func newFrontMatter(record state.Record, runID, sourceHash string, now time.Time) FrontMatter {
	return FrontMatter{
		EndpointID:   record.ID,
		EndpointName: record.Name,
		EndpointType: record.Kind,
		FilePath:     record.File,
		GeneratedAt:  now.UTC().Format(time.RFC3339),
		RunID:        runID,
		SourceHash:   sourceHash,
	}
}

var errEmptyDocument = errors.New("collaborator returned empty documentation")

func ValidateDocument(text string) error {
	if strings.TrimSpace(text) == "" {
		return errEmptyDocument
	}
	return nil
}

// DocumentName returns <kind>_<safe-name>_<YYYYMMDD_HHMMSS>.md.
func DocumentName(kind, name string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.md", kind, fileutil.SafeName(name), now.UTC().Format(docTimeLayout))
}

// RenderDocument prepends the front matter to the collaborator's text.
func RenderDocument(meta FrontMatter, text string) ([]byte, error) {
	header, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(fileutil.EnsureTrailingNewline(strings.TrimSpace(text)))
	return buf.Bytes(), nil
}

// WriteDocument writes the artifact described by meta into dir and returns its
// base name. Two artifacts that would share a name within the same second get
// a numeric suffix instead of overwriting each other.
func WriteDocument(dir string, meta FrontMatter, text string, now time.Time) (string, error) {
	if err := ValidateDocument(text); err != nil {
		return "", err
	}
	data, err := RenderDocument(meta, text)
	if err != nil {
		return "", err
	}

	name, err := freeName(dir, DocumentName(meta.EndpointType, meta.EndpointName, now))
	if err != nil {
		return "", err
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(dir, name), data, 0644); err != nil {
		return "", err
	}
	return name, nil
}

func freeName(dir, name string) (string, error) {
	stem := strings.TrimSuffix(name, ".md")
	candidate := name
	for i := 2; ; i++ {
		_, err := os.Stat(filepath.Join(dir, candidate))
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", candidate, err)
		}
		candidate = stem + "_" + strconv.Itoa(i) + ".md"
	}
}
