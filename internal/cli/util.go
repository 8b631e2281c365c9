package cli

import (
	"fmt"
	"os"

	"github.com/morozRed/apitrail/internal/config"
	"github.com/morozRed/apitrail/internal/state"
)

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

func openManager(cfg *config.Config) *state.Manager {
	return state.NewManager(cfg.ProgressFilePath(), state.NewProject(cfg.CodeDir, cfg.OutputDir))
}
