package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func RunReset(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return err
	}
	if err := requireOutputDir(cfg); err != nil {
		return err
	}
	inProgress, err := OptionalBoolFlag(cmd, "in-progress")
	if err != nil {
		return err
	}

	manager := openManager(cfg)
	failed, err := manager.ResetFailed()
	if err != nil {
		return fmt.Errorf("failed to reset failed endpoints: %w", err)
	}
	stuck := 0
	if inProgress {
		if stuck, err = manager.ResetInProgress(); err != nil {
			return fmt.Errorf("failed to reset in-progress endpoints: %w", err)
		}
	}
	summary, err := manager.Summary()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "reset: failed=%d", failed)
	if inProgress {
		fmt.Fprintf(out, " in_progress=%d", stuck)
	}
	fmt.Fprintf(out, " pending=%d\n", summary.Pending)
	return nil
}
