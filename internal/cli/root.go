package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/morozRed/apitrail/internal/config"
	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "apitrail",
		Short: "Find API endpoints in a codebase and document them in batches",
		Long: `apitrail scans a source tree for HTTP routes and RPC methods, keeps
a durable progress document of which endpoints are documented, and asks a
model to write one markdown document per endpoint, a batch at a time.

Progress lives in <output-dir>/analysis_progress.json. Run analyze repeatedly
(for example from cron) until status reports 100%.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: <code-dir>/"+config.FileName+")")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "List the endpoints found in the code directory",
		Args:  cobra.NoArgs,
		RunE:  RunScan,
	}
	addCodeDirFlag(scanCmd)
	scanCmd.Flags().String("output-dir", "", "Output directory (required with --sync)")
	scanCmd.Flags().Bool("sync", false, "Also reconcile the endpoints into the progress document")
	scanCmd.Flags().Bool("json", false, "Print machine-readable scan output")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Scan and add newly found endpoints to the progress document",
		Args:  cobra.NoArgs,
		RunE:  RunSync,
	}
	addCodeDirFlag(syncCmd)
	syncCmd.Flags().String("output-dir", "", "Output directory for documents and progress")
	syncCmd.Flags().Bool("json", false, "Print machine-readable sync summary")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Scan, sync, then document one batch of pending endpoints",
		Args:  cobra.NoArgs,
		RunE:  RunAnalyze,
	}
	addCodeDirFlag(analyzeCmd)
	analyzeCmd.Flags().String("output-dir", "", "Output directory for documents and progress")
	analyzeCmd.Flags().Int("batch-size", 0, "Endpoints to document in this run (default from config: 1)")
	analyzeCmd.Flags().String("model", "", "Anthropic model name")
	analyzeCmd.Flags().String("api-key", "", "Anthropic API key (default: $ANTHROPIC_API_KEY)")
	analyzeCmd.Flags().Int("rpm", 0, "Maximum model requests per minute (0: unlimited)")
	analyzeCmd.Flags().Bool("json", false, "Print machine-readable batch result")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show documentation progress",
		Args:  cobra.NoArgs,
		RunE:  RunStatus,
	}
	statusCmd.Flags().String("code-dir", "", "Code directory (optional, used for the project name)")
	statusCmd.Flags().String("output-dir", "", "Output directory holding the progress document")
	statusCmd.Flags().Bool("json", false, "Print machine-readable status")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Return failed endpoints to pending",
		Args:  cobra.NoArgs,
		RunE:  RunReset,
	}
	resetCmd.Flags().String("code-dir", "", "Code directory (optional)")
	resetCmd.Flags().String("output-dir", "", "Output directory holding the progress document")
	resetCmd.Flags().Bool("in-progress", false, "Also return endpoints stuck in progress to pending")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "apitrail %s\n", version)
		},
	}

	rootCmd.AddCommand(
		scanCmd,
		syncCmd,
		analyzeCmd,
		statusCmd,
		resetCmd,
		versionCmd,
	)

	return rootCmd
}

func addCodeDirFlag(cmd *cobra.Command) {
	cmd.Flags().String("code-dir", "", "Code directory to scan (default: current directory)")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to read --verbose flag: %w", err)
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}
