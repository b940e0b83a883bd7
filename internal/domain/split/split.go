// Package split turns document text into fixed-size fragments with overlap.
//
// Splitting is deterministic: the same text with the same parameters always
// yields the same fragments, which keeps reindexing idempotent end to end.
package split

import (
	"strings"
)

// DefaultWindow is the default fragment size in runes.
const DefaultWindow = 1000

// DefaultOverlap is the default overlap between adjacent fragments in runes.
const DefaultOverlap = 200

// Fragment is one window of the source text.
// Offsets are rune offsets into the normalized source.
type Fragment struct {
	Index       int
	Text        string
	StartOffset int
	EndOffset   int
}

// TokenCount estimates the token count of the fragment text.
// The heuristic is ~4 runes per token, rounded up.
func (f Fragment) TokenCount() int {
	n := len([]rune(f.Text))
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

// Splitter produces fragments using a sliding rune window.
type Splitter struct {
	window  int
	overlap int
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithWindow sets the fragment size in runes.
func WithWindow(window int) Option {
	return func(s *Splitter) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithOverlap sets the overlap between adjacent fragments in runes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a Splitter. An overlap that is not smaller than the window is
// clamped to window/4 so the window always advances.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		window:  DefaultWindow,
		overlap: DefaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.overlap >= s.window {
		s.overlap = s.window / 4
	}
	return s
}

// Window returns the configured fragment size in runes.
func (s *Splitter) Window() int { return s.window }

// Overlap returns the configured overlap in runes.
func (s *Splitter) Overlap() int { return s.overlap }

// Split cuts text into overlapping fragments. Leading and trailing whitespace
// is trimmed before windowing; offsets refer to the trimmed text. Empty or
// whitespace-only input yields no fragments.
func (s *Splitter) Split(text string) []Fragment {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)
	step := s.window - s.overlap

	fragments := make([]Fragment, 0, total/step+1)
	index := 0
	for start := 0; start < total; start += step {
		end := start + s.window
		if end > total {
			end = total
		}
		fragments = append(fragments, Fragment{
			Index:       index,
			Text:        string(runes[start:end]),
			StartOffset: start,
			EndOffset:   end,
		})
		index++
		if end == total {
			break
		}
	}
	return fragments
}
