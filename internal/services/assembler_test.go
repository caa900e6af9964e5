package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papergen/internal/logging"
	"papergen/internal/models"
)

func TestAssembleScenario(t *testing.T) {
	stream := fragments(
		models.Fragment{Response: "What is X?\n\n"},
		models.Fragment{Response: "Why is Y?"},
		models.Fragment{Done: true},
	)

	got, err := NewAssembler(logging.Discard()).Assemble(stream, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"What is X?", "Why is Y?"}, got)
}

func TestAssembleMatchesSplitOfConcatenation(t *testing.T) {
	cases := [][]string{
		{"  Q1 (4 marks)", "\n\nQ2", " (6 marks)\n\nQ3\n\n  "},
		{"Q", "1", "\n", "\n", "Q2"},
		{"\n\n\nA\n\n\n\nB"},
		{""},
	}
	for i, pieces := range cases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			var frags []models.Fragment
			for _, p := range pieces {
				frags = append(frags, models.Fragment{Response: p})
			}
			frags = append(frags, models.Fragment{Done: true})

			got, err := NewAssembler(logging.Discard()).Assemble(fragments(frags...), 100)
			require.NoError(t, err)

			joined := strings.TrimSpace(strings.Join(pieces, ""))
			want := []string{}
			if joined != "" {
				want = strings.Split(joined, "\n\n")
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestAssembleTruncatesToLimit(t *testing.T) {
	stream := fragments(
		models.Fragment{Response: "Q1\n\nQ2\n\nQ3\n\nQ4"},
		models.Fragment{Done: true},
	)

	got, err := NewAssembler(logging.Discard()).Assemble(stream, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2"}, got)
}

func TestAssembleAcceptsUnderDelivery(t *testing.T) {
	stream := fragments(
		models.Fragment{Response: "Only one question"},
		models.Fragment{Done: true},
	)

	got, err := NewAssembler(logging.Discard()).Assemble(stream, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Only one question"}, got)
}

func TestAssembleStopsAtDone(t *testing.T) {
	stream := fragments(
		models.Fragment{Response: "Q1"},
		models.Fragment{Response: "ignored", Done: true},
		models.Fragment{Response: "\n\nafter done"},
	)

	got, err := NewAssembler(logging.Discard()).Assemble(stream, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1"}, got)
	assert.Equal(t, 2, stream.pulled, "nothing should be read after the done fragment")
}

func TestAssembleSkipsMalformedFragments(t *testing.T) {
	stream := &scriptedStream{items: []streamItem{
		{frag: models.Fragment{Response: "Q1\n\n"}},
		{err: fmt.Errorf("%w: not json", ErrMalformedFragment)},
		{frag: models.Fragment{Response: "Q2"}},
		{frag: models.Fragment{Done: true}},
	}}

	got, err := NewAssembler(logging.Discard()).Assemble(stream, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2"}, got)
}

func TestAssembleWithoutDoneUsesCollectedText(t *testing.T) {
	stream := fragments(
		models.Fragment{Response: "Q1\n\nQ2"},
	)

	got, err := NewAssembler(logging.Discard()).Assemble(stream, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2"}, got)
}

func TestAssembleProviderFailure(t *testing.T) {
	stream := &scriptedStream{items: []streamItem{
		{frag: models.Fragment{Response: "Q1"}},
		{err: errors.New("connection reset by peer")},
	}}

	_, err := NewAssembler(logging.Discard()).Assemble(stream, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderFailure)
}

func TestSplitQuestions(t *testing.T) {
	assert.Equal(t, []string{}, SplitQuestions("   \n\n ", 3))
	assert.Equal(t, []string{"A\nB"}, SplitQuestions("A\nB", 3))
	assert.Equal(t, []string{"A"}, SplitQuestions("A\n\nB", 1))
}
