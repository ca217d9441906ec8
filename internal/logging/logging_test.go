package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pomo.log")
	logger, closer, err := Open(path, "debug")
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hello", "k", "v")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") || !strings.Contains(string(data), "k=v") {
		t.Fatalf("unexpected log output: %q", data)
	}
}

func TestOpenLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pomo.log")
	logger, closer, err := Open(path, "not-a-level")
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hidden")
	logger.Info("shown")
	closer.Close()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Fatal("debug should be filtered at the default info level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Fatal("info should be written")
	}
}

func TestOpenEmptyPath(t *testing.T) {
	logger, closer, err := Open("", "info")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("discarded")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
}
