package qa

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// TextGenerator completes a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generative answers by prompting a TextGenerator with the retrieved context.
type Generative struct {
	Generator TextGenerator
}

// NewGenerative returns the generative strategy.
func NewGenerative(g TextGenerator) *Generative {
	return &Generative{Generator: g}
}

func (g *Generative) Name() string { return "generative" }

func (g *Generative) Answer(ctx context.Context, question, contextText string) (string, error) {
	prompt := BuildPrompt(question, contextText)
	raw, err := g.Generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	answer := CleanGeneration(prompt, raw)
	if answer == "" {
		return Unknown, nil
	}
	return answer, nil
}

// BuildPrompt returns the instruction prompt for question over contextText.
func BuildPrompt(question, contextText string) string {
	return fmt.Sprintf(`Answer the question using only the context below. If the context does not contain the answer, reply "%s"

Context:
%s

Question: %s
Answer:`, Unknown, contextText, question)
}

var answerMarker = regexp.MustCompile(`(?i)^answer\s*:\s*`)

// CleanGeneration strips an echoed prompt and a leading "Answer:" marker from raw output.
func CleanGeneration(prompt, raw string) string {
	out := strings.TrimSpace(raw)
	if p := strings.TrimSpace(prompt); p != "" && strings.HasPrefix(out, p) {
		out = strings.TrimSpace(out[len(p):])
	}
	return strings.TrimSpace(answerMarker.ReplaceAllString(out, ""))
}
