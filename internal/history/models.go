package history

import "time"

// Status is the terminal disposition of one episode within a run.
type Status string

const (
	StatusDownloaded Status = "downloaded"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Record is one episode outcome row.
type Record struct {
	ID          int64
	RunID       string
	EpisodeID   string
	Show        string
	Episode     string
	Status      Status
	FailureKind string
	Detail      string
	Path        string
	SizeBytes   int64
	DurationMS  int64
	CreatedAt   time.Time
}

// RunSummary aggregates the outcomes of a single run.
type RunSummary struct {
	RunID      string
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the number of episodes the run touched.
func (s RunSummary) Total() int {
	return s.Downloaded + s.Skipped + s.Failed
}
