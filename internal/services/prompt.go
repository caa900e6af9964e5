package services

import (
	"fmt"
	"strconv"
	"strings"
)

// QuestionDelimiter separates questions in the model output. SystemPrompt asks
// for exactly this separator; change both together.
const QuestionDelimiter = "\n\n"

// SystemPrompt is the fixed instruction placed ahead of every request.
const SystemPrompt = "You are an AI assistant that writes exam questions from a given text. " +
	"Output only the questions, with no introduction such as 'here are the questions'. " +
	"After each question state the marks it carries, either 4 or 6 depending on its difficulty. " +
	"The questions should be relevant, engaging and cover the key topics of the text. " +
	"Separate consecutive questions with a blank line, i.e. two newline characters."

// ParseQuestionCount parses the num_questions form value.
func ParseQuestionCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, InvalidInput("num_questions %q is not an integer", raw)
	}
	if n < 1 {
		return 0, InvalidInput("num_questions must be positive, got %d", n)
	}
	return n, nil
}

// BuildPrompt composes the system instruction, the caller's base prompt, the
// extracted text and the requested count into one prompt.
func BuildPrompt(basePrompt, text string, count int) string {
	var b strings.Builder
	b.WriteString(SystemPrompt)
	b.WriteString("\n\nBase prompt: ")
	b.WriteString(basePrompt)
	b.WriteString("\n\nText: ")
	b.WriteString(text)
	fmt.Fprintf(&b, "\n\nGenerate %d questions.", count)
	return b.String()
}
