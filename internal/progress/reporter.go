package progress

// Channel classifies announcements so batch runs produce an auditable
// summary: skips are distinguishable from hard failures without parsing
// free-form text.
type Channel string

const (
	ChannelInfo      Channel = "info"
	ChannelDownloads Channel = "downloads"
	ChannelSkips     Channel = "skips"
	ChannelWarnings  Channel = "warnings"
	ChannelErrors    Channel = "errors"
)

// Task tracks one transfer's byte progress. Advance is called after each
// chunk from the single pipeline worker; implementations must never block
// pipeline progress.
type Task interface {
	Advance(n int64)
	Close()
}

// Reporter is the single injectable progress surface for the pipeline. It
// replaces ambient global display state: announcements and transfer tasks
// are the only two operations stages may use.
type Reporter interface {
	Announce(channel Channel, text string)
	StartTask(label string, total int64) Task
}

// Noop returns a reporter that discards announcements and progress.
func Noop() Reporter { return noopReporter{} }

type noopReporter struct{}

func (noopReporter) Announce(Channel, string) {}

func (noopReporter) StartTask(string, int64) Task { return noopTask{} }

type noopTask struct{}

func (noopTask) Advance(int64) {}

func (noopTask) Close() {}
