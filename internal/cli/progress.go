package cli

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// progressSink renders download progress as a single status line on
// stderr, rewritten in place as bytes arrive. With several downloads in
// flight the line shows whichever download reported most recently.
//
// Downloads without a declared length have no percentage to show; the
// line falls back to raw bytes loaded.
type progressSink struct {
	mu     sync.Mutex
	totals map[string]int64
	width  int // widest line written so far, for clearing
}

func newProgressSink() *progressSink {
	return &progressSink{totals: make(map[string]int64)}
}

func (p *progressSink) Start(key string, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totals[key] = total
}

func (p *progressSink) Advance(key string, loaded int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var status string
	if total := p.totals[key]; total > 0 {
		status = fmt.Sprintf("%d%%", loaded*100/total)
	} else {
		status = fmt.Sprintf("%d bytes", loaded)
	}
	p.write(fmt.Sprintf("%s %s %s",
		styleIconProgress.Render(iconArrow), key, StyleDim.Render(status)))
}

func (p *progressSink) Done(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.totals, key)
	p.clear()
}

// write repaints the status line, padding to cover the previous one.
func (p *progressSink) write(line string) {
	if n := len(line); n > p.width {
		p.width = n
	}
	fmt.Fprintf(os.Stderr, "\r%-*s", p.width, line)
}

func (p *progressSink) clear() {
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", p.width))
}
