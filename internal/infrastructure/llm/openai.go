package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"AIWeekly/internal/domain"
	"AIWeekly/internal/ports"
)

// OpenAIClient generates summaries through the OpenAI chat completions API.
type OpenAIClient struct {
	model llms.Model
}

var _ ports.Summarizer = (*OpenAIClient)(nil)

// NewOpenAIClient builds the client. Nothing is dialed here; credential
// problems surface on the first call.
func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	client, err := openai.New(openai.WithToken(apiKey), openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return &OpenAIClient{model: client}, nil
}

// SummarizePaper asks for the structured three-part summary of one paper.
func (c *OpenAIClient) SummarizePaper(ctx context.Context, paper domain.Paper) (string, error) {
	return generate(ctx, c.model, []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, summarySystemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, buildPaperPrompt(paper)),
	}, paperSummaryMaxTokens, paperSummaryTemperature)
}

// SummarizeDigest asks for the executive summary across all papers.
func (c *OpenAIClient) SummarizeDigest(ctx context.Context, papers []domain.Paper) (string, error) {
	return generate(ctx, c.model, []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, introSystemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, buildIntroPrompt(papers)),
	}, introMaxTokens, introTemperature)
}
