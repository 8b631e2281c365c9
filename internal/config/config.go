package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	FileName            = ".apitrail.yaml"
	DefaultProgressFile = "analysis_progress.json"
	DefaultModel        = "claude-sonnet-4-5-20250929"
)

// Config holds analyzer settings. Zero values are filled from defaults.
type Config struct {
	CodeDir   string `yaml:"-"`
	OutputDir string `yaml:"output_dir,omitempty"`

	CodeExtensions []string `yaml:"code_extensions,omitempty"`
	IgnoreDirs     []string `yaml:"ignore_dirs,omitempty"`
	IgnoreRules    []string `yaml:"ignore_rules,omitempty"`

	ProgressFile string `yaml:"progress_file,omitempty"`
	BatchSize    int    `yaml:"batch_size,omitempty"`
	// ScheduleInterval is informational for external drivers, in seconds.
	ScheduleInterval int `yaml:"schedule_interval,omitempty"`

	Detection DetectionConfig `yaml:"detection,omitempty"`
	Model     ModelConfig     `yaml:"model,omitempty"`
}

type DetectionConfig struct {
	FunctionWindow int `yaml:"function_window,omitempty"`
	Workers        int `yaml:"workers,omitempty"`
}

type ModelConfig struct {
	Name              string `yaml:"name,omitempty"`
	APIKey            string `yaml:"api_key,omitempty"`
	MaxTokens         int    `yaml:"max_tokens,omitempty"`
	RequestsPerMinute int    `yaml:"requests_per_minute,omitempty"`
	MaxSourceBytes    int    `yaml:"max_source_bytes,omitempty"`
}

func defaultExtensions() []string {
	return []string{
		".py", ".go", ".java", ".js", ".jsx", ".ts", ".tsx", ".rs", ".cpp", ".c", ".h",
		".proto", ".yaml", ".yml", ".json",
	}
}

func defaultIgnoreDirs() []string {
	return []string{
		".git", ".svn", "node_modules", "__pycache__", ".idea", ".vscode",
		"vendor", "venv", "env", ".env", "dist", "build", "target",
	}
}

// Default returns a configuration rooted at codeDir with every default applied.
func Default(codeDir string) *Config {
	cfg := &Config{CodeDir: codeDir}
	cfg.applyDefaults()
	return cfg
}

// Load reads FileName from codeDir, or explicitPath when set.
// A missing file yields defaults; an unparsable one is an error.
func Load(codeDir, explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = filepath.Join(codeDir, FileName)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && explicitPath == "":
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.CodeDir = codeDir
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.CodeExtensions) == 0 {
		c.CodeExtensions = defaultExtensions()
	}
	if len(c.IgnoreDirs) == 0 {
		c.IgnoreDirs = defaultIgnoreDirs()
	}
	if c.ProgressFile == "" {
		c.ProgressFile = DefaultProgressFile
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1
	}
	if c.ScheduleInterval <= 0 {
		c.ScheduleInterval = 3600
	}
	if c.Detection.FunctionWindow <= 0 {
		c.Detection.FunctionWindow = 5
	}
	if c.Detection.Workers <= 0 {
		c.Detection.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Model.Name == "" {
		c.Model.Name = DefaultModel
	}
	if c.Model.MaxTokens <= 0 {
		c.Model.MaxTokens = 4096
	}
	if c.Model.MaxSourceBytes <= 0 {
		c.Model.MaxSourceBytes = 64 * 1024
	}
}

// Resolve makes CodeDir and OutputDir absolute.
func (c *Config) Resolve() error {
	if c.CodeDir != "" {
		abs, err := filepath.Abs(c.CodeDir)
		if err != nil {
			return fmt.Errorf("failed to resolve code dir %q: %w", c.CodeDir, err)
		}
		c.CodeDir = abs
	}
	if c.OutputDir != "" {
		abs, err := filepath.Abs(c.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to resolve output dir %q: %w", c.OutputDir, err)
		}
		c.OutputDir = abs
	}
	return nil
}

func (c *Config) ProgressFilePath() string {
	return filepath.Join(c.OutputDir, c.ProgressFile)
}

func (c *Config) IsValidCodeFile(path string) bool {
	for _, ext := range c.CodeExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// ShouldIgnoreDir reports whether a directory name is excluded; every dot-directory is.
func (c *Config) ShouldIgnoreDir(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	for _, dir := range c.IgnoreDirs {
		if dir == name {
			return true
		}
	}
	return false
}

// APIKey returns the configured key, falling back to ANTHROPIC_API_KEY.
func (c *Config) APIKey() string {
	if c.Model.APIKey != "" {
		return c.Model.APIKey
	}
	return os.Getenv("ANTHROPIC_API_KEY")
}
