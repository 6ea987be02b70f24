package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func awaitEvent(t *testing.T, events <-chan ports.WatchEvent, want ports.WatchEvent) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "event stream closed before %v", want)
			if ev == want {
				return
			}
		case <-deadline:
			t.Fatalf("no event %v", want)
		}
	}
}

func TestWatcher_ReportsWritesAndRemovals(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "css"), 0o750))

	w, err := watcher.NewWatcher(mocks.NewMockLogger(ctrl))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, root))
	defer w.Stop() //nolint:errcheck // test cleanup

	events := make(chan ports.WatchEvent, 64)
	go func() {
		defer close(events)
		for ev := range w.Events() {
			events <- ev
		}
	}()

	source := filepath.Join(root, "css", "app.styl")
	require.NoError(t, os.WriteFile(source, []byte("body"), 0o600))
	awaitEvent(t, events, ports.WatchEvent{Path: source, Operation: ports.OpWrite})

	require.NoError(t, os.Remove(source))
	awaitEvent(t, events, ports.WatchEvent{Path: source, Operation: ports.OpRemove})
}

func TestWatcher_StopEndsEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	w, err := watcher.NewWatcher(mocks.NewMockLogger(ctrl))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), t.TempDir()))

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	done := make(chan struct{})
	go func() {
		for range w.Events() {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("events did not end after Stop")
	}
}
