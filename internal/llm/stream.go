package llm

import (
	"context"
	"errors"
	"io"
	"iter"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// FragmentSource is the provider-specific half of a TextStream. Recv
// returns io.EOF once the provider signals completion. Close releases the
// underlying connection and is called exactly once by the TextStream.
type FragmentSource interface {
	Recv() (string, error)
	Close() error
}

// TextStream is a forward-only, single-pass sequence of text fragments.
// The underlying connection is released exactly once: when the provider
// finishes, when a failure occurs, or when Close is called, whichever
// comes first. A TextStream is not safe for concurrent use.
type TextStream struct {
	provider string
	src      FragmentSource
	logger   *zap.Logger

	text      string
	err       error
	done      bool
	fragments int

	closeOnce sync.Once
	closeErr  error
}

// NewTextStream wraps src. provider names the source in errors and logs.
// A nil logger discards output.
func NewTextStream(provider string, src FragmentSource, logger *zap.Logger) *TextStream {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextStream{provider: provider, src: src, logger: logger}
}

// Next advances to the next fragment. It returns false when the stream is
// finished, failed, or was closed; check Err to tell them apart.
func (s *TextStream) Next() bool {
	if s.done {
		return false
	}
	text, err := s.src.Recv()
	if err != nil {
		s.text = ""
		if !errors.Is(err, io.EOF) {
			if _, ok := AsStreamError(err); !ok {
				err = transportError(s.provider, err)
			}
			s.err = err
		}
		s.Close()
		return false
	}
	s.text = text
	s.fragments++
	return true
}

// Text returns the fragment produced by the last successful Next.
func (s *TextStream) Text() string { return s.text }

// Err returns the failure that ended the stream, if any.
func (s *TextStream) Err() error { return s.err }

// Close releases the underlying connection. It is safe to call more than once.
func (s *TextStream) Close() error {
	s.closeOnce.Do(func() {
		s.done = true
		s.closeErr = s.src.Close()
		fields := []zap.Field{zap.String("provider", s.provider), zap.Int("fragments", s.fragments)}
		if s.err != nil {
			fields = append(fields, zap.Error(s.err))
		}
		s.logger.Debug("stream closed", fields...)
	})
	return s.closeErr
}

// All returns an iterator over the remaining fragments. A failure is
// yielded once as the final pair. Stopping early closes the stream.
func (s *TextStream) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer s.Close()
		for s.Next() {
			if !yield(s.Text(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield("", err)
		}
	}
}

// Collect drains the stream and returns the concatenated text. On failure
// the text consumed before the failure is returned along with the error.
func Collect(s *TextStream) (string, error) {
	var b strings.Builder
	for text, err := range s.All() {
		if err != nil {
			return b.String(), err
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// Fragments lazily opens a stream on p when iteration begins and yields
// its fragments. The stream is closed on every exit path.
func Fragments(ctx context.Context, p StreamProvider, req StreamRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream, err := p.StreamCompletion(ctx, req)
		if err != nil {
			yield("", err)
			return
		}
		for text, err := range stream.All() {
			if !yield(text, err) {
				return
			}
		}
	}
}
