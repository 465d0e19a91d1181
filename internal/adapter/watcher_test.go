package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	m "sniff.dev/pkg/sniff/internal/model"
)

func TestFsnotifyWatcher_Watch(t *testing.T) {
	t.Run("ticks after a source change", func(t *testing.T) {
		root := t.TempDir()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		watcher := NewFsnotifyWatcher()

		ticks, err := watcher.Watch(ctx, []m.Path{m.Path(root)}, 50*time.Millisecond)
		if err != nil {
			t.Fatalf("Watch() error = %v", err)
		}

		if err := os.WriteFile(filepath.Join(root, "new.cc"), []byte("int x;\n"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}

		select {
		case <-ticks:
		case <-time.After(5 * time.Second):
			t.Fatalf("expected a tick after the write")
		}
	})

	t.Run("channel closes on cancel", func(t *testing.T) {
		root := t.TempDir()

		ctx, cancel := context.WithCancel(context.Background())

		watcher := NewFsnotifyWatcher()

		ticks, err := watcher.Watch(ctx, []m.Path{m.Path(root)}, 50*time.Millisecond)
		if err != nil {
			t.Fatalf("Watch() error = %v", err)
		}

		cancel()

		select {
		case _, ok := <-ticks:
			if ok {
				t.Fatalf("expected the channel to close without a tick")
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("expected the channel to close after cancel")
		}
	})
}

func TestRelevantEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{"cpp write", fsnotify.Event{Name: "a.cc", Op: fsnotify.Write}, true},
		{"header create", fsnotify.Event{Name: "a.hpp", Op: fsnotify.Create}, true},
		{"cpp chmod only", fsnotify.Event{Name: "a.cc", Op: fsnotify.Chmod}, false},
		{"non cpp write", fsnotify.Event{Name: "notes.md", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relevantEvent(tt.event); got != tt.expected {
				t.Errorf("relevantEvent(%v) = %v, expected %v", tt.event, got, tt.expected)
			}
		})
	}
}
