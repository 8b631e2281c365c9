package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// scanProgress draws a one-line spinner while files are scanned. It stays
// silent unless stderr is a terminal and output is human-readable.
type scanProgress struct {
	out     io.Writer
	enabled bool
	start   time.Time
	frame   int
	lastLen int
}

func newScanProgress(asJSON bool) *scanProgress {
	stat, err := os.Stderr.Stat()
	return &scanProgress{
		out:     os.Stderr,
		enabled: err == nil && (stat.Mode()&os.ModeCharDevice) != 0 && !asJSON,
		start:   time.Now(),
	}
}

// Update matches scan.ProgressFunc.
func (p *scanProgress) Update(file string, done, total int) {
	if !p.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	spin := frames[p.frame%len(frames)]
	p.frame++
	if len(file) > 72 {
		file = "..." + file[len(file)-69:]
	}
	p.print(fmt.Sprintf("%s scan %d/%d %s", spin, done, total, file))
}

func (p *scanProgress) Done(files, endpoints int) {
	if !p.enabled {
		return
	}
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.print(fmt.Sprintf("scan complete: %d files, %d endpoints in %s", files, endpoints, elapsed))
	fmt.Fprintln(p.out)
}

func (p *scanProgress) print(status string) {
	if pad := p.lastLen - len(status); pad > 0 {
		status += strings.Repeat(" ", pad)
	}
	p.lastLen = len(status)
	fmt.Fprintf(p.out, "\r%s", status)
}
