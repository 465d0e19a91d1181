package adapter

import (
	"fmt"
	"sort"

	m "sniff.dev/pkg/sniff/internal/model"
)

// Rewriter applies fix-it spans to file content. It is the write side of the
// analysis: the domain decides which fixes apply, the rewriter splices bytes.
type Rewriter interface {
	// Apply returns content with every fix applied. A fix whose Before text
	// no longer matches the span is reported as an error so edits never land
	// on drifted source.
	Apply(content []byte, fixes []m.FixIt) ([]byte, error)
}

// SpanRewriter is the concrete Rewriter.
type SpanRewriter struct{}

// NewSpanRewriter constructs a SpanRewriter.
func NewSpanRewriter() *SpanRewriter {
	return &SpanRewriter{}
}

// Apply splices fixes into content back to front so earlier spans keep their
// byte offsets while later ones are rewritten.
func (r *SpanRewriter) Apply(content []byte, fixes []m.FixIt) ([]byte, error) {
	ordered := make([]m.FixIt, len(fixes))
	copy(ordered, fixes)

	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Span.StartByte > ordered[j].Span.StartByte
	})

	var lastStart uint32 = ^uint32(0)

	result := content

	for _, fix := range ordered {
		start, end := fix.Span.StartByte, fix.Span.EndByte

		if end < start || int(end) > len(result) {
			return nil, fmt.Errorf("fix span [%d,%d) out of bounds for %d bytes", start, end, len(result))
		}

		if end > lastStart {
			return nil, fmt.Errorf("overlapping fix spans at byte %d", start)
		}

		if got := string(result[start:end]); got != fix.Before {
			return nil, fmt.Errorf("source drifted at byte %d: expected %q, found %q", start, fix.Before, got)
		}

		patched := make([]byte, 0, len(result)-int(end-start)+len(fix.After))
		patched = append(patched, result[:start]...)
		patched = append(patched, fix.After...)
		patched = append(patched, result[end:]...)

		result = patched
		lastStart = start
	}

	return result, nil
}
