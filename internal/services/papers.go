package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"sync"

	"papergen/internal/logging"
	"papergen/internal/models"
)

// PaperAssembler draws independently shuffled papers from a question snapshot.
type PaperAssembler struct {
	rng *rand.Rand
}

// NewPaperAssembler uses rng for shuffling; nil means an unseeded source.
func NewPaperAssembler(rng *rand.Rand) *PaperAssembler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &PaperAssembler{rng: rng}
}

// BuildPapers reshuffles the full snapshot for every paper and keeps the first
// perPaperLimit entries. Papers are independent samples and may overlap.
func (a *PaperAssembler) BuildPapers(snapshot []string, paperCount, perPaperLimit int) []models.Paper {
	papers := make([]models.Paper, 0, paperCount)
	for i := 0; i < paperCount; i++ {
		pool := append([]string(nil), snapshot...)
		a.rng.Shuffle(len(pool), func(x, y int) {
			pool[x], pool[y] = pool[y], pool[x]
		})
		if len(pool) > perPaperLimit {
			pool = pool[:perPaperLimit]
		}
		papers = append(papers, models.Paper{Index: i, Questions: pool})
	}
	return papers
}

// Renderer lays out a paper into a document at path.
type Renderer interface {
	Render(paper models.Paper, path string) error
}

// PaperService builds papers from the store and renders them to OutputDir.
type PaperService struct {
	store         QuestionStore
	assembler     *PaperAssembler
	renderer      Renderer
	outputDir     string
	paperCount    int
	perPaperLimit int
	logger        logging.Logger

	mu sync.Mutex
}

type PaperOptions struct {
	OutputDir     string
	PaperCount    int
	PerPaperLimit int
}

func NewPaperService(store QuestionStore, assembler *PaperAssembler, renderer Renderer, opts PaperOptions, logger logging.Logger) *PaperService {
	return &PaperService{
		store:         store,
		assembler:     assembler,
		renderer:      renderer,
		outputDir:     opts.OutputDir,
		paperCount:    opts.PaperCount,
		perPaperLimit: opts.PerPaperLimit,
		logger:        logger,
	}
}

// Generate renders every paper, overwriting earlier files of the same name.
// The first render error stops the batch.
func (s *PaperService) Generate(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(snapshot) == 0 {
		s.logger.Warn("generating papers from an empty question store")
	}

	papers := s.assembler.BuildPapers(snapshot, s.paperCount, s.perPaperLimit)
	files := make([]string, 0, len(papers))
	for _, paper := range papers {
		name := paper.FileName()
		if err := s.renderer.Render(paper, filepath.Join(s.outputDir, name)); err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
		files = append(files, name)
	}

	s.logger.Info("question papers generated", "papers", len(files), "pool", len(snapshot))
	return files, nil
}
