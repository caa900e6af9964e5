package models

import "fmt"

const ExportFileName = "questions.xlsx"

// PaperFileName returns the file name for the zero-based paper index.
func PaperFileName(index int) string {
	return fmt.Sprintf("question_paper_%d.pdf", index+1)
}
