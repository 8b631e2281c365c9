package cli

import (
	"fmt"
	"strings"

	"github.com/morozRed/apitrail/internal/config"
	"github.com/spf13/cobra"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalIntFlag(cmd *cobra.Command, name string) (int, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return 0, nil
	}
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return false, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// LoadConfig reads the config file for --code-dir and applies flag overrides.
// Paths in the result are absolute.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	codeDir, err := OptionalStringFlag(cmd, "code-dir")
	if err != nil {
		return nil, err
	}
	if codeDir == "" {
		if codeDir, err = resolveWorkingDirectory(); err != nil {
			return nil, err
		}
	}
	configPath, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(codeDir, configPath)
	if err != nil {
		return nil, err
	}

	if cfg.OutputDir, err = overrideString(cmd, "output-dir", cfg.OutputDir); err != nil {
		return nil, err
	}
	if cfg.Model.Name, err = overrideString(cmd, "model", cfg.Model.Name); err != nil {
		return nil, err
	}
	if cfg.Model.APIKey, err = overrideString(cmd, "api-key", cfg.Model.APIKey); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = overrideInt(cmd, "batch-size", cfg.BatchSize); err != nil {
		return nil, err
	}
	if cfg.Model.RequestsPerMinute, err = overrideInt(cmd, "rpm", cfg.Model.RequestsPerMinute); err != nil {
		return nil, err
	}

	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func requireOutputDir(cfg *config.Config) error {
	if cfg.OutputDir == "" {
		return fmt.Errorf("--output-dir is required (or set output_dir in %s)", config.FileName)
	}
	return nil
}

func overrideString(cmd *cobra.Command, name, current string) (string, error) {
	value, err := OptionalStringFlag(cmd, name)
	if err != nil || value == "" {
		return current, err
	}
	return value, nil
}

func overrideInt(cmd *cobra.Command, name string, current int) (int, error) {
	value, err := OptionalIntFlag(cmd, name)
	if err != nil || value <= 0 {
		return current, err
	}
	return value, nil
}
