package bench

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/morozRed/apitrail/internal/config"
	"github.com/morozRed/apitrail/internal/scan"
)

func BenchmarkScan_MediumRepo(b *testing.B) {
	root := b.TempDir()
	createSyntheticRepo(b, root, 250)
	scanner := newScanner(b, root)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := scanner.Run(context.Background())
		if err != nil {
			b.Fatalf("scan failed: %v", err)
		}
		if len(result.Endpoints) == 0 {
			b.Fatalf("expected endpoints")
		}
	}
}

func newScanner(tb testing.TB, root string) *scan.Scanner {
	tb.Helper()
	cfg := config.Default(root)
	if err := cfg.Resolve(); err != nil {
		tb.Fatalf("resolve failed: %v", err)
	}
	scanner, err := scan.New(cfg)
	if err != nil {
		tb.Fatalf("scanner failed: %v", err)
	}
	return scanner
}

// createSyntheticRepo writes gin handlers and a proto service per package.
func createSyntheticRepo(tb testing.TB, root string, files int) {
	tb.Helper()

	for i := 0; i < files; i++ {
		dir := filepath.Join(root, fmt.Sprintf("svc%d", i%10))
		if err := os.MkdirAll(dir, 0755); err != nil {
			tb.Fatalf("mkdir failed: %v", err)
		}

		src := fmt.Sprintf(`package svc%d

func register%d(r *gin.Engine) {
	r.GET("/items/%d", getItem%d)
	r.POST("/items/%d", createItem%d)
}

func getItem%d(c *gin.Context) {}

func createItem%d(c *gin.Context) {}
`, i%10, i, i, i, i, i, i, i)
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("routes_%03d.go", i)), []byte(src), 0644); err != nil {
			tb.Fatalf("write failed: %v", err)
		}
		if i%10 == 0 {
			proto := fmt.Sprintf("service Svc%d {\n  rpc Get(GetRequest) returns (Item);\n}\n", i)
			if err := os.WriteFile(filepath.Join(dir, "svc.proto"), []byte(proto), 0644); err != nil {
				tb.Fatalf("write failed: %v", err)
			}
		}
	}
}
