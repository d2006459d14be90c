package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initFile logs to a fresh JSON file only and returns its path.
func initFile(t *testing.T, level string, maxSizeMB int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "texbake.log")
	cfg := FileConfig{Path: path, MaxSizeMB: maxSizeMB, MaxBackups: 2, MaxAgeDays: 1}
	if err := InitWithFileConfig(level, cfg, false); err != nil {
		t.Fatalf("InitWithFileConfig() error = %v", err)
	}
	t.Cleanup(InitNop)
	return path
}

// readEntries decodes one JSON object per line.
func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	Sync()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	defer f.Close()

	var entries []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e map[string]any
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("log line is not JSON: %q", sc.Text())
		}
		entries = append(entries, e)
	}
	return entries
}

func TestNopByDefault(t *testing.T) {
	InitNop()
	// must not panic without Init
	Info("discarded")
	Sugar.Debugf("discarded %d", 1)
}

func TestWithFields(t *testing.T) {
	path := initFile(t, "info", 1)

	With(zap.String("run", "4f1c"), zap.String("object", "Crate")).Info("bake finished")

	entries := readEntries(t, path)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e["object"] != "Crate" || e["run"] != "4f1c" {
		t.Errorf("run fields missing: %v", e)
	}
	if caller, _ := e["caller"].(string); !strings.HasPrefix(caller, "logger/logger_test.go") {
		t.Errorf("caller = %q, want the test file", caller)
	}
}

func TestWrapperCaller(t *testing.T) {
	path := initFile(t, "info", 1)
	Warn("output folder missing", zap.String("folder", "/nope"))

	e := readEntries(t, path)[0]
	if caller, _ := e["caller"].(string); !strings.HasPrefix(caller, "logger/logger_test.go") {
		t.Errorf("caller = %q, want the test file rather than the wrapper", caller)
	}
	if e["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", e["level"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{"error", []string{"ERROR"}},
		{"warn", []string{"WARN", "ERROR"}},
		{"info", []string{"INFO", "WARN", "ERROR"}},
		{"debug", []string{"DEBUG", "INFO", "WARN", "ERROR"}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			path := initFile(t, tt.level, 1)
			Debug("d")
			Info("i")
			Warn("w")
			Error("e")

			var got []string
			for _, e := range readEntries(t, path) {
				got = append(got, e["level"].(string))
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("levels = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogRotation(t *testing.T) {
	path := initFile(t, "info", 1)

	// ~1.5MB of entries against a 1MB limit
	payload := strings.Repeat("x", 256)
	for i := 0; i < 5000; i++ {
		Info("texel row", zap.Int("row", i), zap.String("payload", payload))
	}
	Sync()

	files, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	rotated := 0
	for _, f := range files {
		name := f.Name()
		if name != "texbake.log" && strings.HasPrefix(name, "texbake-") && strings.HasSuffix(name, ".log") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Errorf("no rotated backups in %v", files)
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/var/log/texbake.log")
	want := FileConfig{
		Path:       "/var/log/texbake.log",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 30,
		Compress:   true,
	}
	if cfg != want {
		t.Errorf("DefaultFileConfig() = %+v, want %+v", cfg, want)
	}
}
