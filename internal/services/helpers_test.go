package services

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"papergen/internal/db"
	"papergen/internal/models"
)

type streamItem struct {
	frag models.Fragment
	err  error
}

// scriptedStream replays a fixed sequence and then reports io.EOF.
type scriptedStream struct {
	items  []streamItem
	pos    int
	pulled int
	closed bool
}

func fragments(frags ...models.Fragment) *scriptedStream {
	s := &scriptedStream{}
	for _, f := range frags {
		s.items = append(s.items, streamItem{frag: f})
	}
	return s
}

func (s *scriptedStream) Next() (models.Fragment, error) {
	s.pulled++
	if s.pos >= len(s.items) {
		return models.Fragment{}, io.EOF
	}
	item := s.items[s.pos]
	s.pos++
	return item.frag, item.err
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

// fakeProvider returns the configured stream and records prompts.
type fakeProvider struct {
	stream  FragmentStream
	err     error
	prompts []string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Generate(_ context.Context, prompt string) (FragmentStream, error) {
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return nil, p.err
	}
	return p.stream, nil
}

func (p *fakeProvider) Ping(context.Context) error { return p.err }

func newTestStore(t *testing.T) *SQLiteQuestionStore {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "questions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewQuestionStore(conn)
}
