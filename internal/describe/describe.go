// Package describe writes short breed descriptions with an LLM. It is the
// last resort before a stock sentence when no encyclopedia entry exists.
package describe

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"
)

//go:embed prompts/breed_description.txt
var systemPrompt string

// maxDescriptionTokens bounds the completion length.
const maxDescriptionTokens = 200

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Describer writes a description of a breed.
type Describer interface {
	Name() string
	Describe(ctx context.Context, breed string) (string, error)
	Usage() Usage
}

// Usage tracks token usage across calls.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

type usageTracker struct {
	mu    sync.Mutex
	usage Usage
}

func (u *usageTracker) track(input, output int64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.usage.InputTokens += int(input)
	u.usage.OutputTokens += int(output)
}

// Usage returns the accumulated token usage.
func (u *usageTracker) Usage() Usage {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.usage
}

// Config selects and configures a provider. The first configured provider
// in the order OpenAI, Gemini, Ollama is used.
type Config struct {
	OpenAIToken  string
	GeminiAPIKey string
	OllamaURL    string
	OllamaModel  string
}

// New returns the configured describer, or nil when none is configured.
func New(ctx context.Context, cfg Config) (Describer, error) {
	switch {
	case cfg.OpenAIToken != "":
		return NewOpenAI(cfg.OpenAIToken), nil
	case cfg.GeminiAPIKey != "":
		g, err := NewGemini(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return g, nil
	case cfg.OllamaURL != "":
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel), nil
	}
	return nil, nil
}

func userMessage(breed string) string {
	return fmt.Sprintf("Breed: %s", breed)
}

// clean collapses whitespace and strips quotes and markdown emphasis the
// model sometimes adds.
func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, "\"'`*_ ")
	return s
}
