package cli

import (
	"fmt"

	"github.com/morozRed/apitrail/internal/config"
	"github.com/morozRed/apitrail/internal/enrich"
	"github.com/morozRed/apitrail/internal/languages"
	"github.com/morozRed/apitrail/internal/llm"
	"github.com/morozRed/apitrail/internal/source"
	"github.com/spf13/cobra"
)

// newCollaborator builds the documentation backend; tests replace it.
var newCollaborator = func(cfg *config.Config, sources *source.Pass) (enrich.Collaborator, error) {
	return llm.NewClient(llm.Config{
		APIKey:         cfg.APIKey(),
		Model:          cfg.Model.Name,
		MaxTokens:      cfg.Model.MaxTokens,
		MaxSourceBytes: cfg.Model.MaxSourceBytes,
	}, sources)
}

// RunAnalyze scans, reconciles and documents one batch. Interrupting it
// leaves unprocessed endpoints pending.
func RunAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return err
	}
	if err := requireOutputDir(cfg); err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	sources, err := source.NewPass(cfg.CodeDir, languages.Classify)
	if err != nil {
		return err
	}
	collaborator, err := newCollaborator(cfg, sources)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	result, err := runScan(ctx, cfg, asJSON)
	if err != nil {
		return err
	}
	manager := openManager(cfg)
	if _, err := syncResult(manager, result); err != nil {
		return err
	}

	runner := enrich.NewRunner(manager, collaborator, cfg.OutputDir, cfg.Model.RequestsPerMinute)
	runner.SetSources(sources)
	batch, err := runner.RunBatch(ctx, cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to run batch: %w", err)
	}
	return PrintBatchResult(cmd.OutOrStdout(), batch, asJSON)
}
