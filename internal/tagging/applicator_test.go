package tagging

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"castfetch/internal/catalog"
	"castfetch/internal/config"
	"castfetch/internal/logging"
	"castfetch/internal/services"
)

type recordedCommand struct {
	name string
	args []string
}

// recordingRunner captures invocations and creates each command's output
// file so the atomic replace step has something to rename.
func recordingRunner(t *testing.T, commands *[]recordedCommand) commandRunner {
	t.Helper()
	return func(_ context.Context, name string, args ...string) error {
		*commands = append(*commands, recordedCommand{name: name, args: args})
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("tagged"), 0o644); err != nil {
			t.Fatalf("write command output %s: %v", out, err)
		}
		return nil
	}
}

func newTestApplicator(t *testing.T, commands *[]recordedCommand) *Applicator {
	t.Helper()
	cfg := config.Default()
	applicator := NewApplicator(&cfg, logging.NewNop())
	applicator.WithCommandRunner(recordingRunner(t, commands))
	return applicator
}

func metadataValue(args []string, key string) (string, bool) {
	for i, arg := range args {
		if arg != "-metadata" || i+1 >= len(args) {
			continue
		}
		if value, ok := strings.CutPrefix(args[i+1], key+"="); ok {
			return value, true
		}
	}
	return "", false
}

func TestApplyWritesPodcastTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Show - Episode.ogg")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	var commands []recordedCommand
	applicator := newTestApplicator(t, &commands)

	meta := catalog.EpisodeMetadata{
		ID:          "ep1",
		Name:        "Episode",
		Show:        "Show",
		Year:        "2019",
		Description: "About things.",
		Artists:     []string{"Host A", "Host B"},
	}
	if err := applicator.Apply(context.Background(), path, meta); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if len(commands) != 1 {
		t.Fatalf("got %d commands, want 1 for a container without embedded art", len(commands))
	}
	args := commands[0].args
	for key, want := range map[string]string{
		"title":   "Episode",
		"album":   "Show",
		"artist":  "Host A, Host B",
		"genre":   "Podcast",
		"date":    "2019",
		"comment": "About things.",
	} {
		got, ok := metadataValue(args, key)
		if !ok {
			t.Fatalf("metadata %q not present in args %v", key, args)
		}
		if got != want {
			t.Errorf("metadata %s = %q, want %q", key, got, want)
		}
	}
	if !slices.Contains(args, "copy") {
		t.Error("expected stream copy, found no -c copy argument")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "tagged" {
		t.Error("original file was not replaced by the tagged output")
	}
}

func TestApplyEmbedsCoverArtForSupportedContainers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "Show - Episode.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	var commands []recordedCommand
	applicator := newTestApplicator(t, &commands)

	meta := catalog.EpisodeMetadata{Name: "Episode", Show: "Show", ImageURL: server.URL + "/cover.jpg"}
	if err := applicator.Apply(context.Background(), path, meta); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if len(commands) != 2 {
		t.Fatalf("got %d commands, want tag pass plus art pass", len(commands))
	}
	artArgs := commands[1].args
	if !slices.Contains(artArgs, "attached_pic") {
		t.Errorf("art pass missing attached_pic disposition: %v", artArgs)
	}
}

func TestApplySkipsCoverArtForUnsupportedContainers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Show - Episode.ogg")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	var commands []recordedCommand
	applicator := newTestApplicator(t, &commands)

	meta := catalog.EpisodeMetadata{Name: "Episode", Show: "Show", ImageURL: "http://127.0.0.1:1/cover.jpg"}
	if err := applicator.Apply(context.Background(), path, meta); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(commands) != 1 {
		t.Fatalf("got %d commands, want only the tag pass", len(commands))
	}
}

func TestApplyReportsToolFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Show - Episode.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	applicator := NewApplicator(&cfg, logging.NewNop())
	applicator.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 1")
	})

	err := applicator.Apply(context.Background(), path, catalog.EpisodeMetadata{Name: "Episode"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("Apply() error = %v, want ErrExternalTool", err)
	}

	content, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if string(content) != "audio" {
		t.Error("original file modified despite tool failure")
	}
}

func TestMetadataEntriesOmitsEmptyFields(t *testing.T) {
	entries := metadataEntries(catalog.EpisodeMetadata{Name: "Episode", Show: "Show"})

	if _, ok := entries["date"]; ok {
		t.Error("date entry present for episode without a release year")
	}
	if _, ok := entries["comment"]; ok {
		t.Error("comment entry present for episode without a description")
	}
	if entries["album"] != "Show" || entries["artist"] != "Show" {
		t.Errorf("album/artist = %q/%q, want show name fallback", entries["album"], entries["artist"])
	}
}

func TestMetadataEntriesCarriesReleaseYear(t *testing.T) {
	entries := metadataEntries(catalog.EpisodeMetadata{Name: "Episode", Show: "Show", Year: "2021"})
	if entries["date"] != "2021" {
		t.Errorf("date = %q, want %q", entries["date"], "2021")
	}
}

func TestApplyMissingFile(t *testing.T) {
	cfg := config.Default()
	applicator := NewApplicator(&cfg, logging.NewNop())
	applicator.WithCommandRunner(func(context.Context, string, ...string) error { return nil })

	err := applicator.Apply(context.Background(), filepath.Join(t.TempDir(), "absent.mp3"), catalog.EpisodeMetadata{})
	if err == nil {
		t.Fatal("Apply() = nil, want error for missing file")
	}
}
