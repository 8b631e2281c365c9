package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BatchSize != 1 {
		t.Fatalf("expected default batch size 1, got %d", cfg.BatchSize)
	}
	if cfg.ProgressFile != DefaultProgressFile {
		t.Fatalf("expected default progress file, got %q", cfg.ProgressFile)
	}
	if cfg.Detection.FunctionWindow != 5 {
		t.Fatalf("expected function window 5, got %d", cfg.Detection.FunctionWindow)
	}
	if cfg.Model.Name != DefaultModel {
		t.Fatalf("expected default model, got %q", cfg.Model.Name)
	}
	if !cfg.IsValidCodeFile("svc/api.proto") || cfg.IsValidCodeFile("README.md") {
		t.Fatalf("unexpected extension filter result")
	}
}

func TestLoadReadsYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `output_dir: docs
batch_size: 3
ignore_dirs: [generated]
detection:
  function_window: 8
model:
  name: claude-test
  requests_per_minute: 12
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OutputDir != "docs" || cfg.BatchSize != 3 {
		t.Fatalf("unexpected overrides: output=%q batch=%d", cfg.OutputDir, cfg.BatchSize)
	}
	if cfg.Detection.FunctionWindow != 8 {
		t.Fatalf("expected function window 8, got %d", cfg.Detection.FunctionWindow)
	}
	if cfg.Model.Name != "claude-test" || cfg.Model.RequestsPerMinute != 12 {
		t.Fatalf("unexpected model config: %+v", cfg.Model)
	}
	if cfg.Model.MaxTokens != 4096 {
		t.Fatalf("expected default max tokens to fill in, got %d", cfg.Model.MaxTokens)
	}
	if !cfg.ShouldIgnoreDir("generated") {
		t.Fatalf("expected configured ignore dir to apply")
	}
	if cfg.ShouldIgnoreDir("node_modules") {
		t.Fatalf("expected configured ignore dirs to replace defaults")
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("batch_size: [oops"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(dir, ""); err == nil {
		t.Fatalf("expected invalid YAML to fail")
	}
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir, filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected missing explicit config to fail")
	}
}

func TestShouldIgnoreDirSkipsHiddenDirectories(t *testing.T) {
	cfg := Default(".")
	for _, name := range []string{".git", ".cache", "node_modules", "vendor"} {
		if !cfg.ShouldIgnoreDir(name) {
			t.Fatalf("expected %s to be ignored", name)
		}
	}
	for _, name := range []string{"src", "api", "."} {
		if cfg.ShouldIgnoreDir(name) {
			t.Fatalf("expected %s to be kept", name)
		}
	}
}

func TestAPIKeyFallsBackToEnvironment(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	cfg := Default(".")
	if got := cfg.APIKey(); got != "env-key" {
		t.Fatalf("expected env key, got %q", got)
	}
	cfg.Model.APIKey = "flag-key"
	if got := cfg.APIKey(); got != "flag-key" {
		t.Fatalf("expected explicit key, got %q", got)
	}
}
