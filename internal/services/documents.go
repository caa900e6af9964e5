package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DocumentService stores uploaded syllabus files on local disk.
type DocumentService struct {
	uploadDir string
}

func NewDocumentService(uploadDir string) *DocumentService {
	return &DocumentService{uploadDir: uploadDir}
}

// Save writes src under a fresh name that keeps the original extension and
// returns the stored path.
func (s *DocumentService) Save(original string, src io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure upload dir: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filepath.Base(original)))
	storedPath := filepath.Join(s.uploadDir, name)
	out, err := os.Create(storedPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return storedPath, nil
}
