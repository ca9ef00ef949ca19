package transfer

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"castfetch/internal/logging"
)

func writeMemFile(t *testing.T, fs afero.Fs, path string, size int) {
	t.Helper()
	if err := afero.WriteFile(fs, path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestSatisfiedWithinTolerance(t *testing.T) {
	fs := afero.NewMemMapFs()
	base := filepath.Join("podcasts", "Show", "Show - Episode")
	writeMemFile(t, fs, base+".ogg", 99200)

	probe := NewExistingFileProbeWithFs(fs, true, logging.NewNop())
	path, ok := probe.Satisfied(base, 100000)
	if !ok {
		t.Fatal("Satisfied() = false, want true for file within tolerance")
	}
	if path != base+".ogg" {
		t.Fatalf("Satisfied() path = %q, want %q", path, base+".ogg")
	}
}

func TestSatisfiedRejectsFileTooSmall(t *testing.T) {
	fs := afero.NewMemMapFs()
	base := filepath.Join("podcasts", "Show", "Show - Episode")
	writeMemFile(t, fs, base+".ogg", 98000)

	probe := NewExistingFileProbeWithFs(fs, true, logging.NewNop())
	if _, ok := probe.Satisfied(base, 100000); ok {
		t.Fatal("Satisfied() = true, want false for file 2000 bytes short")
	}
}

func TestSatisfiedDisabled(t *testing.T) {
	fs := afero.NewMemMapFs()
	base := filepath.Join("podcasts", "Show", "Show - Episode")
	writeMemFile(t, fs, base+".mp3", 100000)

	probe := NewExistingFileProbeWithFs(fs, false, logging.NewNop())
	if _, ok := probe.Satisfied(base, 100000); ok {
		t.Fatal("Satisfied() = true, want false when skip-existing is disabled")
	}
}

func TestSatisfiedUnknownDeclaredSize(t *testing.T) {
	fs := afero.NewMemMapFs()
	base := filepath.Join("podcasts", "Show", "Show - Episode")
	writeMemFile(t, fs, base+".m4a", 1)

	probe := NewExistingFileProbeWithFs(fs, true, logging.NewNop())
	if _, ok := probe.Satisfied(base, 0); !ok {
		t.Fatal("Satisfied() = false, want true for non-empty file with unknown size")
	}

	empty := afero.NewMemMapFs()
	writeMemFile(t, empty, base+".m4a", 0)
	probe = NewExistingFileProbeWithFs(empty, true, logging.NewNop())
	if _, ok := probe.Satisfied(base, 0); ok {
		t.Fatal("Satisfied() = true, want false for empty file")
	}
}

func TestSatisfiedIgnoresOtherNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	base := filepath.Join("podcasts", "Show", "Show - Episode")
	writeMemFile(t, fs, base+".tmp", 100000)
	writeMemFile(t, fs, filepath.Join("podcasts", "Show", "Other - Episode.mp3"), 100000)

	probe := NewExistingFileProbeWithFs(fs, true, logging.NewNop())
	if _, ok := probe.Satisfied(base, 100000); ok {
		t.Fatal("Satisfied() = true, want false when only a temp file exists")
	}
}
