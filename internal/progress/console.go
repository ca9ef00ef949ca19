package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// ConsoleOptions controls console reporter construction.
type ConsoleOptions struct {
	// Writer defaults to os.Stdout.
	Writer io.Writer
	// DisableBars suppresses interactive progress bars while keeping
	// announcements. Bars are also suppressed automatically when the writer
	// is not a terminal.
	DisableBars bool
}

// NewConsole builds the interactive reporter used by the CLI. Announcements
// are written as hash-delimited blocks; transfers render a byte progress bar
// when stdout is a terminal.
func NewConsole(opts ConsoleOptions) Reporter {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	bars := !opts.DisableBars
	if f, ok := w.(*os.File); ok {
		if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			bars = false
		}
	}
	return &consoleReporter{writer: w, bars: bars}
}

type consoleReporter struct {
	mu     sync.Mutex
	writer io.Writer
	bars   bool
}

func (c *consoleReporter) Announce(channel Channel, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i == 0 {
			label := strings.ToUpper(string(channel))
			fmt.Fprintf(c.writer, "###   %s: %s   ###\n", label, line)
			continue
		}
		fmt.Fprintf(c.writer, "###   %s   ###\n", line)
	}
}

func (c *consoleReporter) StartTask(label string, total int64) Task {
	if !c.bars {
		return noopTask{}
	}
	bar := progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWriter(c.writer),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(24),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(c.writer) }),
		progressbar.OptionClearOnFinish(),
	)
	return &consoleTask{bar: bar}
}

type consoleTask struct {
	bar *progressbar.ProgressBar
}

func (t *consoleTask) Advance(n int64) {
	_ = t.bar.Add64(n)
}

func (t *consoleTask) Close() {
	_ = t.bar.Finish()
}
