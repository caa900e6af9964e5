package services

import (
	"errors"
	"io"
	"strings"

	"papergen/internal/logging"
)

// Assembler reduces a fragment stream into question strings.
type Assembler struct {
	logger logging.Logger
}

func NewAssembler(logger logging.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Assemble drains stream until a done fragment or EOF, then splits the
// collected text into at most limit questions in arrival order.
func (a *Assembler) Assemble(stream FragmentStream, limit int) ([]string, error) {
	var (
		tokens    strings.Builder
		fragments int
		skipped   int
		done      bool
	)

	for !done {
		frag, err := stream.Next()
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			a.logger.Warn("provider stream ended without a done fragment", "fragments", fragments)
			done = true
			continue
		case errors.Is(err, ErrMalformedFragment):
			skipped++
			a.logger.Error("skipping non-JSON fragment", "error", err)
			continue
		case errors.Is(err, ErrProviderFailure):
			return nil, err
		default:
			return nil, &ProviderError{Provider: "stream", Err: err}
		}

		if frag.Done {
			done = true
			continue
		}
		tokens.WriteString(frag.Response)
		fragments++
	}

	questions := SplitQuestions(tokens.String(), limit)
	a.logger.Debug("assembled provider response",
		"fragments", fragments,
		"skipped", skipped,
		"questions", len(questions),
	)
	if limit > 1 && len(questions) == 1 && strings.Contains(questions[0], "\n") {
		a.logger.Warn("response produced a single multi-line question; the model may not be separating questions with a blank line",
			"requested", limit,
		)
	}
	return questions, nil
}

// SplitQuestions trims text, splits it on QuestionDelimiter and keeps the
// first limit entries. Empty text yields no questions.
func SplitQuestions(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}
	parts := strings.Split(text, QuestionDelimiter)
	if limit >= 0 && len(parts) > limit {
		parts = parts[:limit]
	}
	return parts
}
