package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"graft/internal/driver"
	"graft/internal/ui"
)

type buildOutcome struct {
	result *driver.Result
	err    error
}

// pumpEvents remaps event paths for display and keeps consuming after the
// UI stops reading, so a builder blocked on a progress send can always
// finish. uiDone is closed once the program has exited.
func pumpEvents(root string, events <-chan driver.Event, modelEvents chan<- driver.Event, uiDone <-chan struct{}) {
	for ev := range events {
		ev.Path = formatPathForOutput(root, ev.Path)
		select {
		case modelEvents <- ev:
		case <-uiDone:
		}
	}
	close(modelEvents)
}

// runBuildWithUI executes the build while a progress model consumes its
// events. Paths are shown relative to root; events carry absolute paths, so
// they are remapped before reaching the model. When the UI exits early
// (ctrl+c) the build context is cancelled and remaining events are drained.
func runBuildWithUI(ctx context.Context, title string, root string, files []string, opts driver.Options) (*driver.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	display := make([]string, len(files))
	for i, f := range files {
		display[i] = formatPathForOutput(root, f)
	}

	events := make(chan driver.Event, 256)
	modelEvents := make(chan driver.Event, 256)
	uiDone := make(chan struct{})
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		opts.Events = events
		res, err := driver.Build(ctx, opts)
		outcomeCh <- buildOutcome{result: res, err: err}
		close(events)
	}()
	go pumpEvents(root, events, modelEvents, uiDone)

	model := ui.NewProgressModel(title, display, modelEvents)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	close(uiDone)
	cancel()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
