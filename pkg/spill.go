// Package pkg provides small generic utilities shared across sniff.
package pkg

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Spill is an append-only log of items of type T backed by a temporary file.
// It lets the analysis pipeline accumulate an unbounded number of findings
// without holding them all in memory.
type Spill[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	AppendBatch(items []T) error
	Range(fn func(index uint64, item T) error) error
	Close() error
	Remove() error
}

type spill[T any] struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	encoder *gob.Encoder
	length  uint64
}

// NewSpill creates a Spill backed by a fresh temporary file.
func NewSpill[T any]() (Spill[T], error) {
	file, err := os.CreateTemp("", "sniff-spill-*.gob")
	if err != nil {
		return nil, fmt.Errorf("create spill file: %w", err)
	}

	slog.Debug("created spill", "path", file.Name())

	return &spill[T]{
		path:    file.Name(),
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// Len returns the number of items appended so far.
func (s *spill[T]) Len() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.length
}

// Path returns the backing file path.
func (s *spill[T]) Path() string {
	return s.path
}

// Append encodes one item at the end of the log.
func (s *spill[T]) Append(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.encoder.Encode(item); err != nil {
		return fmt.Errorf("encode item %d: %w", s.length, err)
	}

	s.length++

	return nil
}

// AppendBatch appends items in order, stopping at the first failure.
func (s *spill[T]) AppendBatch(items []T) error {
	for _, item := range items {
		if err := s.Append(item); err != nil {
			return err
		}
	}

	return nil
}

// Range replays the log from the start, invoking fn for each item. A non-nil
// error from fn stops the replay and is returned as is.
func (s *spill[T]) Range(fn func(index uint64, item T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open spill for range: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := gob.NewDecoder(file)

	for i := uint64(0); i < s.length; i++ {
		var item T
		if err := decoder.Decode(&item); err != nil {
			return fmt.Errorf("decode item %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}

// Close flushes and closes the backing file. The log remains readable via a
// new Range until Remove is called.
func (s *spill[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil

	if err != nil {
		return fmt.Errorf("close spill: %w", err)
	}

	return nil
}

// Remove deletes the backing file.
func (s *spill[T]) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slog.Debug("removing spill", "path", s.path, "length", s.length)

	return os.Remove(s.path)
}
