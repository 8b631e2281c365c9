package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/morozRed/apitrail/internal/config"
	"github.com/morozRed/apitrail/internal/enrich"
	"github.com/morozRed/apitrail/internal/llm"
	"github.com/morozRed/apitrail/internal/source"
	"github.com/morozRed/apitrail/internal/state"
	"github.com/spf13/cobra"
)

func init() {
	color.NoColor = true
}

func TestScanJSONListsEndpoints(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root)

	var out bytes.Buffer
	cmd := newScanCmdForTest(&out)
	mustSetFlag(t, cmd, "code-dir", root)
	mustSetFlag(t, cmd, "json", "true")
	if err := RunScan(cmd, nil); err != nil {
		t.Fatalf("RunScan failed: %v", err)
	}

	var summary ScanSummary
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("invalid scan JSON: %v\n%s", err, out.String())
	}
	var ids []string
	for _, entry := range summary.Endpoints {
		ids = append(ids, entry.ID)
	}
	want := []string{"http_GET__users__id", "http_POST__users", "rpc_Users_GetUser"}
	if !slices.Equal(ids, want) {
		t.Fatalf("expected endpoints %v, got %v", want, ids)
	}
	if summary.HTTP != 2 || summary.RPC != 1 || summary.Files != 2 {
		t.Fatalf("unexpected counts %+v", summary)
	}
	if summary.ByLanguage["go"] != 1 || summary.ByLanguage["protobuf"] != 1 {
		t.Fatalf("unexpected language stats %v", summary.ByLanguage)
	}
	if summary.Sync != nil {
		t.Fatalf("plain scan must not sync")
	}
}

func TestScanTextOutput(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root)

	var out bytes.Buffer
	cmd := newScanCmdForTest(&out)
	mustSetFlag(t, cmd, "code-dir", root)
	if err := RunScan(cmd, nil); err != nil {
		t.Fatalf("RunScan failed: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"http endpoints (2):",
		"GET    /users/:id",
		"-> api/routes.go:4 (getUser)",
		"rpc endpoints (1):",
		"Users.GetUser",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected scan output to contain %q:\n%s", want, text)
		}
	}
}

func TestScanSyncRequiresOutputDir(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root)

	cmd := newScanCmdForTest(&bytes.Buffer{})
	mustSetFlag(t, cmd, "code-dir", root)
	mustSetFlag(t, cmd, "sync", "true")
	if err := RunScan(cmd, nil); err == nil || !strings.Contains(err.Error(), "--output-dir") {
		t.Fatalf("expected missing output dir error, got %v", err)
	}
}

func TestSyncIsIdempotentAndStatusReportsIt(t *testing.T) {
	root := t.TempDir()
	outputDir := t.TempDir()
	writeProject(t, root)

	for i, wantAdded := range []int{3, 0} {
		var out bytes.Buffer
		cmd := newSyncCmdForTest(&out)
		mustSetFlag(t, cmd, "code-dir", root)
		mustSetFlag(t, cmd, "output-dir", outputDir)
		mustSetFlag(t, cmd, "json", "true")
		if err := RunSync(cmd, nil); err != nil {
			t.Fatalf("RunSync #%d failed: %v", i+1, err)
		}
		var result state.SyncResult
		if err := json.Unmarshal(out.Bytes(), &result); err != nil {
			t.Fatalf("invalid sync JSON: %v", err)
		}
		if len(result.Added) != wantAdded || result.Total != 3 {
			t.Fatalf("sync #%d: unexpected result %+v", i+1, result)
		}
	}
	assertExists(t, filepath.Join(outputDir, config.DefaultProgressFile))

	// A removed route stays tracked and is reported as vanished.
	mustWriteFile(t, filepath.Join(root, "proto", "users.proto"), "syntax = \"proto3\";\n")
	var out bytes.Buffer
	cmd := newSyncCmdForTest(&out)
	mustSetFlag(t, cmd, "code-dir", root)
	mustSetFlag(t, cmd, "output-dir", outputDir)
	if err := RunSync(cmd, nil); err != nil {
		t.Fatalf("RunSync failed: %v", err)
	}
	if !strings.Contains(out.String(), "vanished (1): rpc_Users_GetUser") {
		t.Fatalf("expected vanished endpoint in output:\n%s", out.String())
	}

	report := readStatus(t, root, outputDir)
	if report.Total != 3 || report.Pending != 3 || report.ProgressPercent != 0 {
		t.Fatalf("unexpected status %+v", report.Summary)
	}
	if report.ProjectName != filepath.Base(root) {
		t.Fatalf("expected project name %q, got %q", filepath.Base(root), report.ProjectName)
	}
}

func TestAnalyzeDocumentsOneBatch(t *testing.T) {
	root := t.TempDir()
	outputDir := t.TempDir()
	writeProject(t, root)

	var seen []enrich.EndpointContext
	stubCollaborator(t, enrich.CollaboratorFunc(func(_ context.Context, endpoint enrich.EndpointContext) (string, error) {
		seen = append(seen, endpoint)
		return "# " + endpoint.Name + "\n", nil
	}))

	var out bytes.Buffer
	cmd := newAnalyzeCmdForTest(&out)
	mustSetFlag(t, cmd, "code-dir", root)
	mustSetFlag(t, cmd, "output-dir", outputDir)
	mustSetFlag(t, cmd, "batch-size", "2")
	if err := RunAnalyze(cmd, nil); err != nil {
		t.Fatalf("RunAnalyze failed: %v", err)
	}

	if len(seen) != 2 || seen[0].Name != "createUser" || seen[1].Name != "getUser" {
		t.Fatalf("expected the first two endpoints by (file, name), got %+v", seen)
	}
	if !strings.Contains(out.String(), "analyzed=2 failed=0") {
		t.Fatalf("unexpected analyze output:\n%s", out.String())
	}
	docs, err := filepath.Glob(filepath.Join(outputDir, "http_*.md"))
	if err != nil || len(docs) != 2 {
		t.Fatalf("expected two http documents, got %v (%v)", docs, err)
	}

	var statusOut bytes.Buffer
	statusCmd := newStatusCmdForTest(&statusOut)
	mustSetFlag(t, statusCmd, "code-dir", root)
	mustSetFlag(t, statusCmd, "output-dir", outputDir)
	if err := RunStatus(statusCmd, nil); err != nil {
		t.Fatalf("RunStatus failed: %v", err)
	}
	for _, want := range []string{"completed:   2", "pending:     1", "progress:    66.7%", "documents (2):"} {
		if !strings.Contains(statusOut.String(), want) {
			t.Fatalf("expected status to contain %q:\n%s", want, statusOut.String())
		}
	}
}

func TestAnalyzeFailureThenReset(t *testing.T) {
	root := t.TempDir()
	outputDir := t.TempDir()
	writeProject(t, root)

	stubCollaborator(t, enrich.CollaboratorFunc(func(context.Context, enrich.EndpointContext) (string, error) {
		return "", errors.New("upstream unavailable")
	}))

	var out bytes.Buffer
	cmd := newAnalyzeCmdForTest(&out)
	mustSetFlag(t, cmd, "code-dir", root)
	mustSetFlag(t, cmd, "output-dir", outputDir)
	mustSetFlag(t, cmd, "json", "true")
	if err := RunAnalyze(cmd, nil); err != nil {
		t.Fatalf("RunAnalyze failed: %v", err)
	}
	var batch enrich.BatchResult
	if err := json.Unmarshal(out.Bytes(), &batch); err != nil {
		t.Fatalf("invalid batch JSON: %v", err)
	}
	if batch.Failed != 1 || batch.Results[0].Error != "upstream unavailable" {
		t.Fatalf("unexpected batch %+v", batch)
	}

	report := readStatus(t, root, outputDir)
	if report.Failed != 1 || len(report.FailedEndpoints) != 1 || report.FailedEndpoints[0].RetryCount != 1 {
		t.Fatalf("unexpected status after failure %+v", report)
	}

	var resetOut bytes.Buffer
	resetCmd := newResetCmdForTest(&resetOut)
	mustSetFlag(t, resetCmd, "code-dir", root)
	mustSetFlag(t, resetCmd, "output-dir", outputDir)
	mustSetFlag(t, resetCmd, "in-progress", "true")
	if err := RunReset(resetCmd, nil); err != nil {
		t.Fatalf("RunReset failed: %v", err)
	}
	if got := resetOut.String(); got != "reset: failed=1 in_progress=0 pending=3\n" {
		t.Fatalf("unexpected reset output %q", got)
	}
}

func TestAnalyzeRequiresAPIKey(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root)
	t.Setenv("ANTHROPIC_API_KEY", "")

	cmd := newAnalyzeCmdForTest(&bytes.Buffer{})
	mustSetFlag(t, cmd, "code-dir", root)
	mustSetFlag(t, cmd, "output-dir", t.TempDir())
	if err := RunAnalyze(cmd, nil); !errors.Is(err, llm.ErrMissingAPIKey) {
		t.Fatalf("expected missing API key error, got %v", err)
	}
}

func TestLoadConfigAppliesFlagOverrides(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, config.FileName), "batch_size: 4\nmodel:\n  name: from-file\n  requests_per_minute: 10\n")

	cmd := newAnalyzeCmdForTest(&bytes.Buffer{})
	mustSetFlag(t, cmd, "code-dir", root)
	mustSetFlag(t, cmd, "output-dir", "out")
	mustSetFlag(t, cmd, "model", "from-flag")
	cfg, err := LoadConfig(cmd)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.BatchSize != 4 || cfg.Model.RequestsPerMinute != 10 {
		t.Fatalf("expected file values to survive, got %+v", cfg)
	}
	if cfg.Model.Name != "from-flag" {
		t.Fatalf("expected flag to override model, got %q", cfg.Model.Name)
	}
	if !filepath.IsAbs(cfg.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.OutputDir)
	}
}

func TestLoadConfigDefaultsToWorkingDirectory(t *testing.T) {
	root := t.TempDir()
	withWorkingDir(t, root, func() {
		cfg, err := LoadConfig(newScanCmdForTest(&bytes.Buffer{}))
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		want, _ := filepath.EvalSymlinks(root)
		got, _ := filepath.EvalSymlinks(cfg.CodeDir)
		if got != want {
			t.Fatalf("expected code dir %q, got %q", want, got)
		}
	})
}

func TestRootCommandRunsSubcommands(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root)

	var out bytes.Buffer
	rootCmd := NewRootCommand("test")
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out.String() != "apitrail test\n" {
		t.Fatalf("unexpected version output %q", out.String())
	}

	out.Reset()
	rootCmd = NewRootCommand("test")
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"scan", "--code-dir", root, "--json", "--verbose"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !strings.Contains(out.String(), `"rpc_Users_GetUser"`) {
		t.Fatalf("expected scan JSON through the root command:\n%s", out.String())
	}
}

func writeProject(t *testing.T, root string) {
	t.Helper()
	mustWriteFile(t, filepath.Join(root, "api", "routes.go"), `package api

func Register(r *gin.Engine) {
	r.GET("/users/:id", getUser)
	r.POST("/users", createUser)
}
`)
	mustWriteFile(t, filepath.Join(root, "proto", "users.proto"), `service Users {
  rpc GetUser(GetUserRequest) returns (User);
}
`)
	mustWriteFile(t, filepath.Join(root, "node_modules", "lib", "index.js"), `app.get("/hidden", h)`)
}

func readStatus(t *testing.T, root, outputDir string) StatusReport {
	t.Helper()
	var out bytes.Buffer
	cmd := newStatusCmdForTest(&out)
	mustSetFlag(t, cmd, "code-dir", root)
	mustSetFlag(t, cmd, "output-dir", outputDir)
	mustSetFlag(t, cmd, "json", "true")
	if err := RunStatus(cmd, nil); err != nil {
		t.Fatalf("RunStatus failed: %v", err)
	}
	var report StatusReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("invalid status JSON: %v\n%s", err, out.String())
	}
	return report
}

func stubCollaborator(t *testing.T, collaborator enrich.Collaborator) {
	t.Helper()
	original := newCollaborator
	newCollaborator = func(*config.Config, *source.Pass) (enrich.Collaborator, error) {
		return collaborator, nil
	}
	t.Cleanup(func() { newCollaborator = original })
}

func newScanCmdForTest(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.Flags().String("code-dir", "", "")
	cmd.Flags().String("output-dir", "", "")
	cmd.Flags().Bool("sync", false, "")
	cmd.Flags().Bool("json", false, "")
	return cmd
}

func newSyncCmdForTest(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.Flags().String("code-dir", "", "")
	cmd.Flags().String("output-dir", "", "")
	cmd.Flags().Bool("json", false, "")
	return cmd
}

func newAnalyzeCmdForTest(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.Flags().String("code-dir", "", "")
	cmd.Flags().String("output-dir", "", "")
	cmd.Flags().Int("batch-size", 0, "")
	cmd.Flags().String("model", "", "")
	cmd.Flags().String("api-key", "", "")
	cmd.Flags().Int("rpm", 0, "")
	cmd.Flags().Bool("json", false, "")
	return cmd
}

func newStatusCmdForTest(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.Flags().String("code-dir", "", "")
	cmd.Flags().String("output-dir", "", "")
	cmd.Flags().Bool("json", false, "")
	return cmd
}

func newResetCmdForTest(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.Flags().String("code-dir", "", "")
	cmd.Flags().String("output-dir", "", "")
	cmd.Flags().Bool("in-progress", false, "")
	return cmd
}

func withWorkingDir(t *testing.T, dir string, fn func()) {
	t.Helper()

	originalWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get cwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	fn()
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func mustSetFlag(t *testing.T, cmd *cobra.Command, key, value string) {
	t.Helper()
	if err := cmd.Flags().Set(key, value); err != nil {
		t.Fatalf("failed to set --%s=%s: %v", key, value, err)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}
