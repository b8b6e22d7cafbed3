package main

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}

	if *host == "" {
		t.Error("Host should have a default value")
	}

	if *boardsDir == "" {
		t.Error("Boards directory should have a default value")
	}
}

func TestBuildServer(t *testing.T) {
	tmp := t.TempDir()

	originalBoards, originalEvents := *boardsDir, *eventLogPath
	*boardsDir = tmp
	*eventLogPath = filepath.Join(tmp, "events.jsonl")
	defer func() { *boardsDir, *eventLogPath = originalBoards, originalEvents }()

	handler, cleanup, err := buildServer(zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer cleanup()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != 200 {
		t.Errorf("Expected 200 from /health, got %d", w.Code)
	}
}

func TestBuildServer_InvalidBoardsDir(t *testing.T) {
	originalBoards := *boardsDir
	*boardsDir = "/non/existent/path"
	defer func() { *boardsDir = originalBoards }()

	_, _, err := buildServer(zerolog.Nop())
	if err == nil {
		t.Error("Expected error for non-existent boards directory")
	}
}

func TestBuildServer_EventLogDisabled(t *testing.T) {
	tmp := t.TempDir()

	originalBoards, originalEvents := *boardsDir, *eventLogPath
	*boardsDir = tmp
	*eventLogPath = ""
	defer func() { *boardsDir, *eventLogPath = originalBoards, originalEvents }()

	handler, cleanup, err := buildServer(zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer cleanup()

	if handler == nil {
		t.Fatal("Expected handler to be initialized")
	}
}
