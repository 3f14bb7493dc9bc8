package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// IsTerminal reports whether fd is a terminal. Tests replace it.
var IsTerminal = term.IsTerminal

const (
	progressInterval = 100 * time.Millisecond
	progressBarWidth = 30
	progressLineLen  = 78
)

// Progress is an io.Writer that forwards to dst and redraws a one-line
// download bar on out.
type Progress struct {
	dst   io.Writer
	out   io.Writer
	total int64

	mu      sync.Mutex
	written int64
	started time.Time
	drawn   time.Time
}

// NewProgress wraps dst. A total <= 0 shows only the byte count.
func NewProgress(dst io.Writer, total int64, out io.Writer) *Progress {
	return &Progress{dst: dst, out: out, total: total, started: time.Now()}
}

// ShowProgress reports whether a progress bar should be drawn on stderr.
func ShowProgress() bool {
	return IsTerminal(int(os.Stderr.Fd()))
}

// Write implements io.Writer.
func (p *Progress) Write(b []byte) (int, error) {
	n, err := p.dst.Write(b)
	if n > 0 {
		p.mu.Lock()
		p.written += int64(n)
		if now := time.Now(); now.Sub(p.drawn) >= progressInterval {
			p.drawn = now
			p.draw(now)
		}
		p.mu.Unlock()
	}
	return n, err
}

// Finish erases the progress line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "\r%s\r", strings.Repeat(" ", progressLineLen))
}

func (p *Progress) draw(now time.Time) {
	elapsed := now.Sub(p.started).Seconds()
	var rate float64
	if elapsed > 0 {
		rate = float64(p.written) / elapsed
	}

	var line string
	if p.total > 0 {
		frac := float64(p.written) / float64(p.total)
		if frac > 1 {
			frac = 1
		}
		filled := int(frac * progressBarWidth)
		bar := strings.Repeat("=", filled) + strings.Repeat(" ", progressBarWidth-filled)
		line = fmt.Sprintf("\r  [%s] %3.0f%% %s/%s %s/s",
			bar, frac*100, FormatBytes(p.written), FormatBytes(p.total), FormatBytes(int64(rate)))
	} else {
		line = fmt.Sprintf("\r  %s %s/s", FormatBytes(p.written), FormatBytes(int64(rate)))
	}

	if pad := progressLineLen - len(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	fmt.Fprint(p.out, line)
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%dB", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit && exp < 2; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(b)/float64(div), "KMG"[exp])
}
