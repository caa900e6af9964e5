package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papergen/internal/logging"
	"papergen/internal/models"
)

type generationFixture struct {
	svc      *GenerationService
	store    *SQLiteQuestionStore
	provider *fakeProvider
}

func newGenerationFixture(t *testing.T, provider *fakeProvider) generationFixture {
	t.Helper()
	store := newTestStore(t)
	svc := NewGenerationService(
		NewDocumentService(filepath.Join(t.TempDir(), "uploads")),
		NewExtractor(logging.Discard()),
		provider,
		NewAssembler(logging.Discard()),
		store,
		logging.Discard(),
	)
	return generationFixture{svc: svc, store: store, provider: provider}
}

func syllabusRequest(n int) models.GenerationRequest {
	return models.GenerationRequest{
		BasePrompt:   "Focus on graphs",
		NumQuestions: n,
		FileName:     "syllabus.txt",
		Document:     strings.NewReader("Unit 1: BFS and DFS"),
	}
}

func TestGenerateReplacesStore(t *testing.T) {
	ctx := context.Background()
	stream := fragments(
		models.Fragment{Response: "Explain BFS (4 marks)\n\n"},
		models.Fragment{Response: "Compare BFS and DFS (6 marks)\n\nExtra (4 marks)"},
		models.Fragment{Done: true},
	)
	fx := newGenerationFixture(t, &fakeProvider{stream: stream})
	require.NoError(t, fx.store.ReplaceAll(ctx, []string{"stale"}))

	got, err := fx.svc.Generate(ctx, syllabusRequest(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"Explain BFS (4 marks)", "Compare BFS and DFS (6 marks)"}, got)

	stored, err := fx.store.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, stored)

	require.Len(t, fx.provider.prompts, 1)
	assert.Contains(t, fx.provider.prompts[0], "Base prompt: Focus on graphs")
	assert.Contains(t, fx.provider.prompts[0], "Text: Unit 1: BFS and DFS")
	assert.True(t, strings.HasSuffix(fx.provider.prompts[0], "Generate 2 questions."))
	assert.True(t, stream.closed)
}

func TestGenerateRejectsBadInputWithoutCallingProvider(t *testing.T) {
	fx := newGenerationFixture(t, &fakeProvider{stream: fragments()})

	_, err := fx.svc.Generate(context.Background(), syllabusRequest(0))
	assert.ErrorIs(t, err, ErrInvalidInput)

	req := syllabusRequest(3)
	req.Document = nil
	_, err = fx.svc.Generate(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = syllabusRequest(3)
	req.FileName = "syllabus.exe"
	req.Document = strings.NewReader("\x01\x02\x03\x04\x05binary\x00")
	_, err = fx.svc.Generate(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, fx.provider.prompts)
}

func TestGenerateProviderFailureKeepsStore(t *testing.T) {
	ctx := context.Background()
	fx := newGenerationFixture(t, &fakeProvider{
		err: &ProviderError{Provider: "fake", Err: errors.New("connection refused")},
	})
	require.NoError(t, fx.store.ReplaceAll(ctx, []string{"Old question"}))

	_, err := fx.svc.Generate(ctx, syllabusRequest(5))
	assert.ErrorIs(t, err, ErrProviderFailure)

	stored, err := fx.store.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Old question"}, stored)
}

func TestGenerateMidStreamFailureKeepsStore(t *testing.T) {
	ctx := context.Background()
	stream := &scriptedStream{items: []streamItem{
		{frag: models.Fragment{Response: "Q1\n\n"}},
		{err: errors.New("unexpected EOF")},
	}}
	fx := newGenerationFixture(t, &fakeProvider{stream: stream})
	require.NoError(t, fx.store.ReplaceAll(ctx, []string{"Old question"}))

	_, err := fx.svc.Generate(ctx, syllabusRequest(5))
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.True(t, stream.closed)

	stored, err := fx.store.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Old question"}, stored)
}

func TestGenerateEmptyResponseClearsStore(t *testing.T) {
	ctx := context.Background()
	fx := newGenerationFixture(t, &fakeProvider{stream: fragments(models.Fragment{Done: true})})
	require.NoError(t, fx.store.ReplaceAll(ctx, []string{"Old question"}))

	got, err := fx.svc.Generate(ctx, syllabusRequest(5))
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err := fx.store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGenerateAcceptsPDFWithoutExtension(t *testing.T) {
	data, err := os.ReadFile(writePDF(t, "upload", "Unit 3 Shortest paths"))
	require.NoError(t, err)

	fx := newGenerationFixture(t, &fakeProvider{stream: fragments(
		models.Fragment{Response: "Explain Dijkstra (6 marks)"},
		models.Fragment{Done: true},
	)})

	got, err := fx.svc.Generate(context.Background(), models.GenerationRequest{
		BasePrompt:   "Graphs",
		NumQuestions: 1,
		FileName:     "syllabus",
		Document:     bytes.NewReader(data),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Explain Dijkstra (6 marks)"}, got)
	require.Len(t, fx.provider.prompts, 1)
	assert.Contains(t, fx.provider.prompts[0], "Unit 3 Shortest paths")
}
