package domain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"sniff.dev/pkg/sniff/internal/adapter"
	m "sniff.dev/pkg/sniff/internal/model"
)

func TestSourceStreamerSources(t *testing.T) {
	root := t.TempDir()

	for _, name := range []string{"a.cc", "b.cpp", "ignore.txt"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("int x = 1;\n"), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	streamer := NewSourceStreamer(adapter.NewLocalSourceFSAdapter())

	var sources []m.Source
	for source := range streamer.Sources(context.Background(), []m.Path{m.Path(root + "/...")}, nil, 2) {
		sources = append(sources, source)
	}

	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}

	// Deterministic path order.
	if filepath.Base(string(sources[0].Origin.FullPath)) != "a.cc" {
		t.Errorf("expected a.cc first, got %s", sources[0].Origin.FullPath)
	}
}

func TestShardDiagnostics(t *testing.T) {
	streamer := NewSourceStreamer(adapter.NewLocalSourceFSAdapter())

	fileA := &m.File{ShortPath: "a.cc", Hash: "hash-a"}
	fileB := &m.File{ShortPath: "b.cc", Hash: "hash-b"}

	diagnostics := []m.Diagnostic{
		{ID: 0, Source: m.Source{Origin: fileA}},
		{ID: 1, Source: m.Source{Origin: fileA}},
		{ID: 0, Source: m.Source{Origin: fileB}},
		{ID: 1, Source: m.Source{Origin: fileB}},
	}

	feed := func(order []m.Diagnostic) <-chan m.Diagnostic {
		in := make(chan m.Diagnostic, len(order))
		for _, d := range order {
			in <- d
		}
		close(in)

		return in
	}

	collect := func(shardIndex, totalShardCount int, order []m.Diagnostic) map[string]int {
		out := streamer.ShardDiagnostics(context.Background(), feed(order), 1, shardIndex, totalShardCount)

		perFile := map[string]int{}
		for d := range out {
			perFile[string(d.Source.Origin.Hash)]++
		}

		return perFile
	}

	t.Run("a file's findings stay together in one shard", func(t *testing.T) {
		shard0 := collect(0, 2, diagnostics)
		shard1 := collect(1, 2, diagnostics)

		for _, hash := range []string{"hash-a", "hash-b"} {
			inShard0 := shard0[hash]
			inShard1 := shard1[hash]

			if inShard0+inShard1 != 2 {
				t.Errorf("%s: expected both findings to survive sharding, got %d + %d", hash, inShard0, inShard1)
			}

			if inShard0 != 0 && inShard1 != 0 {
				t.Errorf("%s: findings split across shards (%d in shard 0, %d in shard 1)", hash, inShard0, inShard1)
			}
		}
	})

	t.Run("shard assignment ignores arrival order", func(t *testing.T) {
		reversed := make([]m.Diagnostic, 0, len(diagnostics))
		for i := len(diagnostics) - 1; i >= 0; i-- {
			reversed = append(reversed, diagnostics[i])
		}

		forward := collect(0, 2, diagnostics)
		backward := collect(0, 2, reversed)

		for _, hash := range []string{"hash-a", "hash-b"} {
			if forward[hash] != backward[hash] {
				t.Errorf("%s: shard membership changed with arrival order (%d vs %d)", hash, forward[hash], backward[hash])
			}
		}
	})

	t.Run("single shard passes everything", func(t *testing.T) {
		out := streamer.ShardDiagnostics(context.Background(), feed(diagnostics), 1, 0, 1)

		count := 0
		for range out {
			count++
		}

		if count != 4 {
			t.Fatalf("expected 4 diagnostics, got %d", count)
		}
	})
}
