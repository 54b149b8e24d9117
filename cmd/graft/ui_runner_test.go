package main

import (
	"path/filepath"
	"testing"
	"time"

	"graft/internal/driver"
)

func TestPumpEventsDrainsAfterUIExit(t *testing.T) {
	root := t.TempDir()
	events := make(chan driver.Event)
	modelEvents := make(chan driver.Event, 1)
	uiDone := make(chan struct{})
	pumped := make(chan struct{})

	go func() {
		pumpEvents(root, events, modelEvents, uiDone)
		close(pumped)
	}()

	// While the UI is up, events flow through with display paths.
	events <- driver.Event{Path: filepath.Join(root, "src", "a.ts")}
	if ev := <-modelEvents; ev.Path != "src/a.ts" {
		t.Fatalf("forwarded path = %q, want workspace-relative", ev.Path)
	}

	// After the UI exits nobody reads modelEvents, yet sends must still
	// be accepted so the builder never blocks behind a dead progress view.
	close(uiDone)
	for range 100 {
		select {
		case events <- driver.Event{Path: filepath.Join(root, "src", "b.ts")}:
		case <-time.After(5 * time.Second):
			t.Fatal("event send blocked after the UI exited")
		}
	}
	close(events)

	select {
	case <-pumped:
	case <-time.After(5 * time.Second):
		t.Fatal("pump did not finish draining")
	}
}
