package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWatchTriggersRefreshOnWrite(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "templates.json")
	if err := os.WriteFile(source, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	var refreshes atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = Watch(ctx, []string{source}, 50*time.Millisecond, testLogger(), func(context.Context) error {
			refreshes.Add(1)
			return nil
		})
		close(done)
	}()

	// Give the watcher a moment to register, then touch the file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(source, []byte(`{"version":"2"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for refreshes.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if refreshes.Load() == 0 {
		t.Fatal("refresh never fired after file change")
	}

	cancel()
	<-done
}

func TestWatchIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "templates.json")
	other := filepath.Join(dir, "other.json")
	if err := os.WriteFile(source, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	var refreshes atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = Watch(ctx, []string{source}, 50*time.Millisecond, testLogger(), func(context.Context) error {
			refreshes.Add(1)
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(other, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	if refreshes.Load() != 0 {
		t.Errorf("refresh fired %d times for an unrelated file", refreshes.Load())
	}
}

func TestWatchNoFilesBlocksUntilCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, nil, 0, testLogger(), func(context.Context) error { return nil })
	}()

	select {
	case <-done:
		t.Fatal("Watch returned before cancellation")
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}
