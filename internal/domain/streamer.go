package domain

import (
	"context"
	"hash/fnv"
	"log/slog"

	"sniff.dev/pkg/sniff/internal/adapter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// SourceStreamer feeds discovered sources into the analysis pipeline and
// filters the resulting diagnostics down to one CI shard.
type SourceStreamer interface {
	Sources(ctx context.Context, paths []m.Path, exclude []string, threads int) <-chan m.Source
	ShardDiagnostics(ctx context.Context, in <-chan m.Diagnostic, threads, shardIndex, totalShardCount int) <-chan m.Diagnostic
}

type sourceStreamer struct {
	adapter.SourceFSAdapter
}

// NewSourceStreamer creates a SourceStreamer backed by the filesystem
// adapter.
func NewSourceStreamer(fsAdapter adapter.SourceFSAdapter) SourceStreamer {
	return &sourceStreamer{SourceFSAdapter: fsAdapter}
}

// Sources streams discovered sources in deterministic path order. The
// channel closes when discovery finishes or ctx is cancelled.
func (s *sourceStreamer) Sources(ctx context.Context, paths []m.Path, exclude []string, threads int) <-chan m.Source {
	ch := make(chan m.Source, bufferSize(threads))

	go func() {
		defer close(ch)

		sources, err := s.Get(ctx, paths, exclude...)
		if err != nil {
			slog.Error("failed to discover sources", "error", err)
			return
		}

		slog.Debug("discovered sources", "count", len(sources))

		for _, source := range sources {
			select {
			case <-ctx.Done():
				return
			case ch <- source:
			}
		}
	}()

	return ch
}

// ShardDiagnostics passes through the diagnostics belonging to shardIndex.
// Distribution hashes the source file's content hash, so every finding of a
// file lands in the same shard and independent shard invocations partition
// the tree identically regardless of worker scheduling. A non-positive
// shard count disables sharding.
func (s *sourceStreamer) ShardDiagnostics(ctx context.Context, in <-chan m.Diagnostic, threads, shardIndex, totalShardCount int) <-chan m.Diagnostic {
	ch := make(chan m.Diagnostic, bufferSize(threads))

	go func() {
		defer close(ch)

		for d := range in {
			if ctx.Err() != nil {
				return
			}

			if totalShardCount > 1 && shardOf(d, totalShardCount) != shardIndex {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case ch <- d:
			}
		}
	}()

	return ch
}

// shardOf maps a diagnostic to its shard by the origin file's content hash.
func shardOf(d m.Diagnostic, totalShardCount int) int {
	if d.Source.Origin == nil {
		return hashShard("", totalShardCount)
	}

	return hashShard(d.Source.Origin.Hash, totalShardCount)
}

// hashShard maps a content hash to a shard index.
func hashShard(hash string, totalShardCount int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(hash))

	return int(h.Sum32() % uint32(totalShardCount))
}

// shardSources keeps the sources assigned to shardIndex, so a sharded run
// analyzes and persists only the files it owns.
func shardSources(sources []m.Source, shardIndex, totalShardCount int) []m.Source {
	if totalShardCount <= 1 {
		return sources
	}

	kept := make([]m.Source, 0, len(sources))

	for _, source := range sources {
		if source.Origin != nil && hashShard(source.Origin.Hash, totalShardCount) == shardIndex {
			kept = append(kept, source)
		}
	}

	return kept
}

func bufferSize(threads int) int {
	if threads <= 0 {
		return 1
	}

	return threads
}
