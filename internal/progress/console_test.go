package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleAnnounceDelimitsLines(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewConsole(ConsoleOptions{Writer: &buf, DisableBars: true})

	reporter.Announce(ChannelSkips, "EPISODE ALREADY EXISTS\nEpisode_ID: ep42")

	out := buf.String()
	if !strings.Contains(out, "SKIPS: EPISODE ALREADY EXISTS") {
		t.Fatalf("missing channel label:\n%s", out)
	}
	if !strings.Contains(out, "Episode_ID: ep42") {
		t.Fatalf("missing continuation line:\n%s", out)
	}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if !strings.HasPrefix(line, "###") || !strings.HasSuffix(line, "###") {
			t.Fatalf("line not hash-delimited: %q", line)
		}
	}
}

func TestConsoleAnnounceIgnoresEmpty(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewConsole(ConsoleOptions{Writer: &buf, DisableBars: true})
	reporter.Announce(ChannelInfo, "")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestConsoleTaskWithoutTerminalIsSilent(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewConsole(ConsoleOptions{Writer: &buf, DisableBars: true})

	task := reporter.StartTask("episode", 100)
	task.Advance(50)
	task.Advance(50)
	task.Close()

	if buf.Len() != 0 {
		t.Fatalf("disabled bars should render nothing, got %q", buf.String())
	}
}

func TestNoopReporter(t *testing.T) {
	reporter := Noop()
	reporter.Announce(ChannelErrors, "ignored")
	task := reporter.StartTask("x", -1)
	task.Advance(10)
	task.Close()
}
