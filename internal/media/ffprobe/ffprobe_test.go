package ffprobe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestParseCodecName(t *testing.T) {
	cases := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{"plain", "codec_name=mp3\n", "mp3", false},
		{"crlf", "codec_name=vorbis\r\n", "vorbis", false},
		{"leading blank", "\n\ncodec_name=aac\ncodec_name=mjpeg\n", "aac", false},
		{"no field", "duration=12.5\n", "", true},
		{"empty value", "codec_name=\n", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseCodecName(tc.output)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCodecName: %v", err)
			}
			if got != tc.want {
				t.Fatalf("codec = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDetectCodecMissingBinary(t *testing.T) {
	_, err := DetectCodec(context.Background(), "definitely-not-ffprobe-bin", "error", "/tmp/file.tmp")
	if !errors.Is(err, ErrBinaryMissing) {
		t.Fatalf("expected ErrBinaryMissing, got %v", err)
	}
}

func TestDetectCodecWithStubBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub not portable to windows")
	}
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	script := "#!/bin/sh\necho 'codec_name=opus'\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	codec, err := DetectCodec(context.Background(), stub, "error", filepath.Join(dir, "episode.tmp"))
	if err != nil {
		t.Fatalf("DetectCodec: %v", err)
	}
	if codec != "opus" {
		t.Fatalf("codec = %q, want opus", codec)
	}
}

func TestDetectCodecEmptyPath(t *testing.T) {
	if _, err := DetectCodec(context.Background(), "ffprobe", "error", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
