package cli

import (
	"github.com/morozRed/apitrail/internal/fileutil"
	"github.com/spf13/cobra"
)

func RunSync(cmd *cobra.Command, args []string) error {
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

	result, err := runScan(commandContext(cmd), cfg, asJSON)
	if err != nil {
		return err
	}
	synced, err := syncResult(openManager(cfg), result)
	if err != nil {
		return err
	}
	if asJSON {
		return fileutil.PrintJSON(cmd.OutOrStdout(), synced)
	}
	printSyncResult(cmd.OutOrStdout(), synced)
	return nil
}
