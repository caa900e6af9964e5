package api

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"papergen/internal/logging"
	"papergen/internal/models"
	"papergen/internal/services"
	"papergen/internal/web"
)

const maxMultipartMemory = 8 << 20 // 8 MB

const (
	msgGenerateFailed = "An error occurred while processing the request."
	msgPapersFailed   = "An error occurred while generating question papers."
	msgPapersOK       = "Question papers generated successfully."
	msgExportFailed   = "An error occurred while exporting questions."
	msgListFailed     = "An error occurred while loading questions."
)

type Server struct {
	engine     *gin.Engine
	generation *services.GenerationService
	papers     *services.PaperService
	exporter   *services.Exporter
	store      services.QuestionStore
	provider   services.Provider
	outputDir  string
	logger     logging.Logger
}

type Deps struct {
	Generation *services.GenerationService
	Papers     *services.PaperService
	Exporter   *services.Exporter
	Store      services.QuestionStore
	Provider   services.Provider
	OutputDir  string
	Logger     logging.Logger
}

func NewServer(d Deps) *Server {
	engine := gin.New()
	engine.MaxMultipartMemory = maxMultipartMemory
	engine.Use(gin.Recovery(), logging.Middleware(d.Logger), cors.Default())

	s := &Server{
		engine:     engine,
		generation: d.Generation,
		papers:     d.Papers,
		exporter:   d.Exporter,
		store:      d.Store,
		provider:   d.Provider,
		outputDir:  d.OutputDir,
		logger:     d.Logger,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleIndex)
	if static, err := fs.Sub(web.FS, "static"); err == nil {
		s.engine.StaticFS("/static", http.FS(static))
	}

	s.engine.GET("/health", s.handleHealth)
	s.engine.POST("/generate-questions", s.handleGenerateQuestions)
	s.engine.GET("/generate-papers", s.handleGeneratePapers)
	s.engine.GET("/download/:filename", s.handleDownload)
	s.engine.GET("/questions", s.handleListQuestions)
	s.engine.GET("/export-questions", s.handleExportQuestions)
}

func (s *Server) handleIndex(c *gin.Context) {
	page, err := web.FS.ReadFile("index.html")
	if err != nil {
		c.String(http.StatusInternalServerError, "index unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) handleHealth(c *gin.Context) {
	count, err := s.store.Count(c.Request.Context())
	if err != nil {
		s.logger.LogError(err, "health check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	provider := "ok"
	if err := s.provider.Ping(ctx); err != nil {
		provider = "unreachable"
		s.logger.Warn("provider ping failed", "provider", s.provider.Name(), "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"questions": count,
		"provider":  provider,
	})
}

func (s *Server) handleGenerateQuestions(c *gin.Context) {
	req, closeFn, err := parseGenerationForm(c)
	if form := c.Request.MultipartForm; form != nil {
		defer form.RemoveAll()
	}
	if err != nil {
		s.fail(c, err, msgGenerateFailed)
		return
	}
	defer closeFn()

	s.logger.Debug("received generation request",
		"base_prompt", req.BasePrompt,
		"num_questions", req.NumQuestions,
		"file", req.FileName,
	)

	questions, err := s.generation.Generate(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err, msgGenerateFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func parseGenerationForm(c *gin.Context) (models.GenerationRequest, func(), error) {
	noop := func() {}

	basePrompt, ok := c.GetPostForm("base_prompt")
	if !ok {
		return models.GenerationRequest{}, noop, services.InvalidInput("base_prompt is required")
	}
	rawCount, ok := c.GetPostForm("num_questions")
	if !ok {
		return models.GenerationRequest{}, noop, services.InvalidInput("num_questions is required")
	}
	count, err := services.ParseQuestionCount(rawCount)
	if err != nil {
		return models.GenerationRequest{}, noop, err
	}

	header, err := c.FormFile("syllabus")
	if err != nil {
		return models.GenerationRequest{}, noop, services.InvalidInput("syllabus file is required")
	}
	src, err := header.Open()
	if err != nil {
		return models.GenerationRequest{}, noop, services.InvalidInput("open syllabus: %v", err)
	}

	return models.GenerationRequest{
		BasePrompt:   basePrompt,
		NumQuestions: count,
		FileName:     header.Filename,
		Document:     src,
	}, func() { _ = src.Close() }, nil
}

func (s *Server) handleGeneratePapers(c *gin.Context) {
	files, err := s.papers.Generate(c.Request.Context())
	if err != nil {
		s.fail(c, err, msgPapersFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": msgPapersOK,
		"files":   files,
	})
}

func (s *Server) handleDownload(c *gin.Context) {
	path, ok := s.outputPath(c.Param("filename"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.File(path)
}

// outputPath resolves name inside the output directory, rejecting anything
// that is not a plain existing file there.
func (s *Server) outputPath(name string) (string, bool) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", false
	}
	path := filepath.Join(s.outputDir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

func (s *Server) handleListQuestions(c *gin.Context) {
	questions, err := s.store.ListAll(c.Request.Context())
	if err != nil {
		s.fail(c, err, msgListFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (s *Server) handleExportQuestions(c *gin.Context) {
	path := filepath.Join(s.outputDir, models.ExportFileName)
	n, err := s.exporter.Export(c.Request.Context(), path)
	if err != nil {
		s.fail(c, err, msgExportFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Questions exported successfully.",
		"file":      models.ExportFileName,
		"questions": n,
	})
}

// fail logs the real error and answers with the generic message only.
func (s *Server) fail(c *gin.Context, err error, message string) {
	s.logger.LogError(err, "request failed",
		"kind", services.ErrorKind(err),
		"path", c.Request.URL.Path,
	)
	var perr *services.ProviderError
	if errors.As(err, &perr) && perr.StatusCode != 0 {
		s.logger.Error("provider returned an error status", "provider", perr.Provider, "status_code", perr.StatusCode)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
