package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"papergen/internal/logging"
	"papergen/internal/models"
)

// GenerationService coordinates upload storage, text extraction, the provider
// call and store replacement.
type GenerationService struct {
	documents *DocumentService
	extractor TextExtractor
	provider  Provider
	assembler *Assembler
	store     QuestionStore
	logger    logging.Logger

	// one generation at a time; concurrent calls would race on ReplaceAll
	mu sync.Mutex
}

func NewGenerationService(
	documents *DocumentService,
	extractor TextExtractor,
	provider Provider,
	assembler *Assembler,
	store QuestionStore,
	logger logging.Logger,
) *GenerationService {
	return &GenerationService{
		documents: documents,
		extractor: extractor,
		provider:  provider,
		assembler: assembler,
		store:     store,
		logger:    logger,
	}
}

// Generate runs one full generation and replaces the stored questions with
// the result.
func (s *GenerationService) Generate(ctx context.Context, req models.GenerationRequest) ([]string, error) {
	if req.NumQuestions < 1 {
		return nil, InvalidInput("num_questions must be positive, got %d", req.NumQuestions)
	}
	if req.Document == nil {
		return nil, InvalidInput("syllabus file is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.documents.Save(req.FileName, req.Document)
	if err != nil {
		return nil, fmt.Errorf("store upload %s: %w", req.FileName, err)
	}
	s.logger.Debug("saved upload", "file", req.FileName, "path", path)

	text, err := s.extractor.Extract(path)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("extracted syllabus text", "preview", truncateForLog(strings.TrimSpace(text), 100))

	prompt := BuildPrompt(req.BasePrompt, text, req.NumQuestions)
	s.logger.Debug("sending prompt", "provider", s.provider.Name(), "chars", len(prompt))

	stream, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	questions, err := s.assembler.Assemble(stream, req.NumQuestions)
	if err != nil {
		return nil, err
	}

	if err := s.store.ReplaceAll(ctx, questions); err != nil {
		return nil, fmt.Errorf("store questions: %w", err)
	}

	s.logger.Info("questions generated", "requested", req.NumQuestions, "received", len(questions))
	return questions, nil
}
