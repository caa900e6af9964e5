package models

import "io"

// Question is one generated exam question. It may carry its own mark
// annotation, e.g. "Explain TCP slow start. (6 marks)".
type Question = string

// GenerationRequest is the parsed form of a generate-questions call.
type GenerationRequest struct {
	BasePrompt   string
	NumQuestions int
	FileName     string
	Document     io.Reader
}

// Paper is one randomized selection of stored questions.
type Paper struct {
	Index     int
	Questions []Question
}

// FileName is the stable output name for the paper, e.g. question_paper_1.pdf.
func (p Paper) FileName() string {
	return PaperFileName(p.Index)
}

// Fragment is one piece of a streamed provider response.
type Fragment struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}
