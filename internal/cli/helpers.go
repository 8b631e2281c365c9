package cli

import (
	"context"
	"fmt"

	"github.com/morozRed/apitrail/internal/config"
	"github.com/morozRed/apitrail/internal/scan"
	"github.com/morozRed/apitrail/internal/state"
)

func runScan(ctx context.Context, cfg *config.Config, asJSON bool) (*scan.Result, error) {
	scanner, err := scan.New(cfg)
	if err != nil {
		return nil, err
	}
	progress := newScanProgress(asJSON)
	scanner.Progress = progress.Update

	result, err := scanner.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", cfg.CodeDir, err)
	}
	progress.Done(len(result.Files), len(result.Endpoints))
	return result, nil
}

func syncResult(manager *state.Manager, result *scan.Result) (state.SyncResult, error) {
	synced, err := manager.Sync(state.SeedsFromEntries(result.Endpoints))
	if err != nil {
		return state.SyncResult{}, fmt.Errorf("failed to sync progress: %w", err)
	}
	return synced, nil
}
