package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warning", LevelWarn},
		{"WARN", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn)
	l.SetOutput(&buf)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below warn leaked:\n%s", out)
	}
	if !strings.Contains(out, "WARN warn 3") {
		t.Errorf("missing warn line:\n%s", out)
	}
	if !strings.Contains(out, "ERROR error 4") {
		t.Errorf("missing error line:\n%s", out)
	}

	buf.Reset()
	l.SetLevel(LevelDebug)
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "DEBUG now visible") {
		t.Errorf("SetLevel(debug) not applied:\n%s", buf.String())
	}
}

func TestTracer(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelDebug)
	l.SetOutput(&buf)

	trace := l.Tracer()
	trace("house system undefined, using Porphyry", "system", "Koch", "latitude", 70.0)

	out := buf.String()
	for _, want := range []string{"house system undefined", `"system": "Koch"`, `"latitude": 70`} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output missing %q:\n%s", want, out)
		}
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ls-houses.log")
	cfg := DefaultFileConfig(path)
	cfg.Compress = false

	l := NewWithFile(LevelInfo, cfg)
	l.SetOutput(&bytes.Buffer{})
	l.Info("cusps computed for %s", "Placidus")
	l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "cusps computed for Placidus") {
		t.Errorf("log file missing entry:\n%s", data)
	}
}

func TestFileSinkSurvivesOutputChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ls-houses.log")
	cfg := DefaultFileConfig(path)
	cfg.Compress = false

	l := NewWithFile(LevelInfo, cfg)
	t.Cleanup(func() { _ = l.Close() })
	sink := l.fileSink

	var first, second bytes.Buffer
	l.SetOutput(&first)
	l.Info("before switch")
	l.SetOutput(&second)
	l.Info("after switch")
	l.SetOutput(io.Discard)
	l.Info("console quiet")
	l.Sync()

	if l.fileSink != sink {
		t.Error("SetOutput replaced the file sink")
	}
	if !strings.Contains(first.String(), "before switch") || strings.Contains(first.String(), "after switch") {
		t.Errorf("first console = %q", first.String())
	}
	if !strings.Contains(second.String(), "after switch") {
		t.Errorf("second console = %q", second.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, want := range []string{"before switch", "after switch", "console quiet"} {
		if strings.Count(string(data), want) != 1 {
			t.Errorf("log file should hold %q once:\n%s", want, data)
		}
	}
}

func TestCloseWithoutFile(t *testing.T) {
	l := New(LevelInfo)
	l.SetOutput(&bytes.Buffer{})
	if err := l.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	l.Tracer()("nothing", "k", 1)
	l.Sync()
}
