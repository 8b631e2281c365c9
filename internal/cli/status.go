package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/morozRed/apitrail/internal/fileutil"
	"github.com/morozRed/apitrail/internal/state"
	"github.com/spf13/cobra"
)

const statusDocLimit = 10

type StatusReport struct {
	state.Summary
	ScheduleIntervalSeconds int            `json:"schedule_interval_seconds"`
	CompletedDocs           []string       `json:"completed_docs"`
	FailedEndpoints         []state.Record `json:"failed_endpoints"`
}

func RunStatus(cmd *cobra.Command, args []string) error {
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

	store, err := openManager(cfg).Load()
	if err != nil {
		return fmt.Errorf("failed to read progress: %w", err)
	}
	report := StatusReport{
		Summary:                 store.Summary(),
		ScheduleIntervalSeconds: cfg.ScheduleInterval,
		CompletedDocs:           store.CompletedDocs(),
		FailedEndpoints:         store.RecordsWithStatus(state.StatusFailed),
	}
	if asJSON {
		return fileutil.PrintJSON(cmd.OutOrStdout(), report)
	}
	printStatus(cmd.OutOrStdout(), report)
	return nil
}

func printStatus(w io.Writer, report StatusReport) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	s := report.Summary
	fmt.Fprintf(w, "%s\n", cyan("progress: "+s.ProjectName))
	fmt.Fprintf(w, "  total:       %d\n", s.Total)
	fmt.Fprintf(w, "  completed:   %s\n", green(s.Completed))
	fmt.Fprintf(w, "  pending:     %s\n", yellow(s.Pending))
	if s.InProgress > 0 {
		fmt.Fprintf(w, "  in progress: %s\n", yellow(s.InProgress))
	}
	fmt.Fprintf(w, "  failed:      %s\n", red(s.Failed))
	fmt.Fprintf(w, "  progress:    %.1f%%\n", s.ProgressPercent)
	lastRun := gray("never")
	if s.LastRun != nil {
		lastRun = s.LastRun.Local().Format("2006-01-02 15:04:05")
	}
	fmt.Fprintf(w, "  last run:    %s\n", lastRun)
	fmt.Fprintf(w, "  interval:    %s\n", time.Duration(report.ScheduleIntervalSeconds)*time.Second)

	if len(report.FailedEndpoints) > 0 {
		fmt.Fprintf(w, "\n%s\n", red(fmt.Sprintf("failed (%d):", len(report.FailedEndpoints))))
		for _, record := range report.FailedEndpoints {
			message := ""
			if record.ErrorMessage != nil {
				message = *record.ErrorMessage
			}
			fmt.Fprintf(w, "  - %s (retries=%d): %s\n", record.Name, record.RetryCount, message)
		}
	}

	if docs := report.CompletedDocs; len(docs) > 0 {
		fmt.Fprintf(w, "\n%s\n", green(fmt.Sprintf("documents (%d):", len(docs))))
		shown := docs
		if len(shown) > statusDocLimit {
			shown = shown[:statusDocLimit]
		}
		for _, doc := range shown {
			fmt.Fprintf(w, "  - %s\n", doc)
		}
		if len(docs) > statusDocLimit {
			fmt.Fprintf(w, "  %s\n", gray(fmt.Sprintf("... %d more", len(docs)-statusDocLimit)))
		}
	}
}
