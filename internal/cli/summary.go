package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/morozRed/apitrail/internal/detect"
	"github.com/morozRed/apitrail/internal/enrich"
	"github.com/morozRed/apitrail/internal/fileutil"
	"github.com/morozRed/apitrail/internal/scan"
	"github.com/morozRed/apitrail/internal/state"
)

type ScanSummary struct {
	Mode       string            `json:"mode"`
	RootPath   string            `json:"root_path"`
	Files      int               `json:"files"`
	ByLanguage map[string]int    `json:"by_language"`
	Candidates int               `json:"candidates"`
	HTTP       int               `json:"http"`
	RPC        int               `json:"rpc"`
	Endpoints  []detect.Entry    `json:"endpoints"`
	Issues     []scan.Issue      `json:"issues,omitempty"`
	Sync       *state.SyncResult `json:"sync,omitempty"`
	DurationMS int64             `json:"duration_ms"`
}

func newScanSummary(result *scan.Result, durationMS int64) ScanSummary {
	kinds := result.CountByKind()
	return ScanSummary{
		Mode:       "scan",
		RootPath:   result.Root,
		Files:      len(result.Files),
		ByLanguage: result.ByLanguage,
		Candidates: result.Candidates,
		HTTP:       kinds[detect.KindHTTP],
		RPC:        kinds[detect.KindRPC],
		Endpoints:  result.Endpoints,
		Issues:     result.Issues,
		DurationMS: durationMS,
	}
}

func PrintScanSummary(w io.Writer, summary ScanSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	fmt.Fprintf(w, "scan: root=%s files=%d candidates=%d endpoints=%d duration=%dms\n",
		summary.RootPath, summary.Files, summary.Candidates, len(summary.Endpoints), summary.DurationMS)
	if langs := languageCounts(summary.ByLanguage); langs != "" {
		fmt.Fprintf(w, "languages: %s\n", langs)
	}

	var httpLines, rpcLines []string
	for _, entry := range summary.Endpoints {
		c := entry.Candidate
		location := fmt.Sprintf("%s:%d", c.File, c.Line)
		switch c.Kind {
		case detect.KindHTTP:
			line := fmt.Sprintf("  %-6s %-40s -> %s", c.Method, c.Path, location)
			if fn := c.FunctionName(); fn != "" {
				line += " (" + fn + ")"
			}
			httpLines = append(httpLines, line)
		case detect.KindRPC:
			service := c.ServiceName()
			if service == "" {
				service = "?"
			}
			rpcLines = append(rpcLines, fmt.Sprintf("  %-47s -> %s", service+"."+c.Name, location))
		}
	}
	fmt.Fprintf(w, "http endpoints (%d):\n", len(httpLines))
	for _, line := range httpLines {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "rpc endpoints (%d):\n", len(rpcLines))
	for _, line := range rpcLines {
		fmt.Fprintln(w, line)
	}
	for _, issue := range summary.Issues {
		fmt.Fprintf(w, "warning: %s: %s\n", issue.File, issue.Message)
	}
	if summary.Sync != nil {
		printSyncResult(w, *summary.Sync)
	}
	return nil
}

func printSyncResult(w io.Writer, result state.SyncResult) {
	fmt.Fprintf(w, "sync: added=%d vanished=%d total=%d\n", len(result.Added), len(result.Vanished), result.Total)
	if len(result.Added) > 0 {
		fmt.Fprintf(w, "added (%d): %s\n", len(result.Added), SummarizePaths(result.Added, 8))
	}
	if len(result.Vanished) > 0 {
		fmt.Fprintf(w, "vanished (%d): %s\n", len(result.Vanished), SummarizePaths(result.Vanished, 8))
	}
}

func PrintBatchResult(w io.Writer, result *enrich.BatchResult, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, result)
	}

	fmt.Fprintf(w, "analyze: run=%s status=%s analyzed=%d failed=%d progress=%.1f%%\n",
		result.RunID, result.Status, result.Analyzed, result.Failed, result.Summary.ProgressPercent)
	if result.Status == enrich.StatusCompleted {
		fmt.Fprintln(w, "nothing pending; every endpoint has been processed")
	}
	for _, item := range result.Results {
		if item.Success {
			fmt.Fprintf(w, "  ok   %s -> %s\n", item.Endpoint, item.DocFile)
			continue
		}
		fmt.Fprintf(w, "  fail %s: %s\n", item.Endpoint, item.Error)
	}
	if result.Stopped {
		fmt.Fprintln(w, "interrupted; remaining endpoints stay pending")
	}
	return nil
}

func languageCounts(byLanguage map[string]int) string {
	langs := fileutil.MapKeysSorted(byLanguage)
	sort.SliceStable(langs, func(i, j int) bool {
		return byLanguage[langs[i]] > byLanguage[langs[j]]
	})
	parts := make([]string, 0, len(langs))
	for _, lang := range langs {
		parts = append(parts, fmt.Sprintf("%s=%d", lang, byLanguage[lang]))
	}
	return strings.Join(parts, " ")
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
