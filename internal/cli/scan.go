package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

func RunScan(cmd *cobra.Command, args []string) error {
	start := time.Now()
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	withSync, err := OptionalBoolFlag(cmd, "sync")
	if err != nil {
		return err
	}
	if withSync {
		if err := requireOutputDir(cfg); err != nil {
			return err
		}
	}

	result, err := runScan(commandContext(cmd), cfg, asJSON)
	if err != nil {
		return err
	}
	summary := newScanSummary(result, 0)
	if withSync {
		synced, err := syncResult(openManager(cfg), result)
		if err != nil {
			return err
		}
		summary.Sync = &synced
	}
	summary.DurationMS = time.Since(start).Milliseconds()
	return PrintScanSummary(cmd.OutOrStdout(), summary, asJSON)
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
