package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"AIWeekly/internal/domain"
	"AIWeekly/internal/ports"
)

const (
	paperSummaryMaxTokens   = 200
	paperSummaryTemperature = 0.3
	introMaxTokens          = 180
	introTemperature        = 0.4

	maxPromptAuthors = 3

	summarySystemPrompt = "You are an AI research expert who writes concise, technical summaries."
	introSystemPrompt   = "You are an AI research analyst who identifies trends and themes in academic research."
)

// New builds the summarizer for the configured backend name.
func New(backend, apiKey, model string) (ports.Summarizer, error) {
	switch strings.ToLower(backend) {
	case "openai":
		return NewOpenAIClient(apiKey, model)
	case "anthropic":
		return NewAnthropicClient(apiKey, model)
	default:
		return nil, fmt.Errorf("Unsupported LLM backend: %s", backend)
	}
}

func generate(ctx context.Context, model llms.Model, messages []llms.MessageContent, maxTokens int, temperature float64) (string, error) {
	resp, err := model.GenerateContent(ctx, messages,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	content := strings.TrimSpace(resp.Choices[0].Content)
	if content == "" {
		return "", errors.New("empty completion")
	}
	return content, nil
}

func buildPaperPrompt(paper domain.Paper) string {
	authors := paper.Authors
	suffix := ""
	if len(authors) > maxPromptAuthors {
		authors = authors[:maxPromptAuthors]
		suffix = "..."
	}

	return fmt.Sprintf(`Analyze this research paper and provide a structured summary:

Title: %s
Authors: %s%s
Abstract: %s

Please provide:
1. Primary contribution (≤20 words)
2. Practitioner impact (≤30 words)
3. One-line method description

Format as structured text, not bullet points.`,
		paper.Title, strings.Join(authors, ", "), suffix, paper.Abstract)
}

func buildIntroPrompt(papers []domain.Paper) string {
	titles := make([]string, 0, len(papers))
	for _, paper := range papers {
		titles = append(titles, "- "+paper.Title)
	}

	return fmt.Sprintf("Write a 120-word executive summary for this week's top AI research papers. "+
		"List 3 dominant themes across these papers:\n\n"+
		"Papers:\n%s\n\n"+
		"Focus on overarching trends and themes that connect multiple papers, "+
		"rather than individual paper details.",
		strings.Join(titles, "\n"))
}
