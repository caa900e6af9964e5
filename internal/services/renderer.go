package services

import (
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"papergen/internal/models"
)

type RendererConfig struct {
	PageSize   string
	MarginsMM  float64
	FontFamily string
	Title      string
}

// PDFRenderer writes one paper per file using fpdf's core fonts.
type PDFRenderer struct {
	cfg RendererConfig
}

func NewPDFRenderer(cfg RendererConfig) *PDFRenderer {
	if cfg.PageSize == "" {
		cfg.PageSize = "Letter"
	}
	if cfg.MarginsMM == 0 {
		cfg.MarginsMM = 20
	}
	if cfg.FontFamily == "" {
		cfg.FontFamily = "Helvetica"
	}
	if cfg.Title == "" {
		cfg.Title = "question paper"
	}
	return &PDFRenderer{cfg: cfg}
}

func (r *PDFRenderer) Render(paper models.Paper, path string) error {
	pdf := fpdf.New("P", "mm", r.cfg.PageSize, "")
	pdf.SetMargins(r.cfg.MarginsMM, r.cfg.MarginsMM, r.cfg.MarginsMM)
	pdf.SetAutoPageBreak(true, r.cfg.MarginsMM)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := fmt.Sprintf("%s %d", cases.Title(language.English).String(r.cfg.Title), paper.Index+1)
	pdf.SetTitle(title, true)
	pdf.AddPage()

	// ---------- title ----------
	pdf.SetFont(r.cfg.FontFamily, "B", 18)
	pdf.CellFormat(0, 12, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// ---------- questions ----------
	pdf.SetFont(r.cfg.FontFamily, "", 11)
	for i, q := range paper.Questions {
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, q)), "", "L", false)
		pdf.Ln(4)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
