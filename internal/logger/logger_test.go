package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"Warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr != (err != nil) {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("draft persisted")
	l.Info("step advanced")
	l.Warn("persist failed")
	l.Error("submit failed")

	out := buf.String()
	if strings.Contains(out, "draft persisted") || strings.Contains(out, "step advanced") {
		t.Errorf("messages below WARN should be dropped, got %q", out)
	}
	if !strings.Contains(out, "[WARN] persist failed") {
		t.Errorf("missing warn line in %q", out)
	}
	if !strings.Contains(out, "[ERROR] submit failed") {
		t.Errorf("missing error line in %q", out)
	}
}

func TestLogger_Named(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelDebug)

	store := l.Named("draftstore")
	store.Info("saved %d bytes", 42)

	if !strings.Contains(buf.String(), "[INFO] draftstore: saved 42 bytes") {
		t.Errorf("unexpected output %q", buf.String())
	}

	// Level changes on a named logger apply to the root.
	store.SetLevel(LevelError)
	l.Info("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("level set through named logger should apply to parent")
	}
}

func TestLogger_EnvConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recruitdash.log")
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFile, path)

	l := New()
	defer l.Close()

	if l.level != LevelDebug {
		t.Fatalf("expected debug level from env, got %v", l.level)
	}
	l.Debug("wizard opened")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "wizard opened") {
		t.Errorf("log file missing message: %q", content)
	}
}

func TestLogger_ConfigureRejectsBadLevel(t *testing.T) {
	t.Setenv(EnvLevel, "")
	t.Setenv(EnvFile, "")
	l := New()
	if err := l.Configure("chatty", ""); err == nil {
		t.Fatal("expected error for invalid level")
	}
	if l.level != LevelInfo {
		t.Errorf("level should be unchanged, got %v", l.level)
	}
}

func TestLogger_CloseIsIdempotent(t *testing.T) {
	t.Setenv(EnvLevel, "")
	t.Setenv(EnvFile, filepath.Join(t.TempDir(), "x.log"))
	l := New()
	if err := l.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	Default.SetOutput(&buf)
	Default.SetLevel(LevelDebug)
	defer Default.SetOutput(os.Stderr)

	Debug("debug %s", "test")
	Info("info %s", "test")
	Warn("warn %s", "test")
	Error("error %s", "test")

	for _, want := range []string{"debug test", "info test", "warn test", "error test"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output should contain %q", want)
		}
	}
}
