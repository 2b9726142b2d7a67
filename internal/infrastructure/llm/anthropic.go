package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/schema"

	"AIWeekly/internal/domain"
	"AIWeekly/internal/ports"
)

// AnthropicClient generates summaries through the Anthropic messages API.
// Requests carry the instructions in the user message alone.
type AnthropicClient struct {
	model llms.Model
}

var _ ports.Summarizer = (*AnthropicClient)(nil)

// NewAnthropicClient builds the client. Nothing is dialed here; credential
// problems surface on the first call.
func NewAnthropicClient(apiKey, model string) (*AnthropicClient, error) {
	client, err := anthropic.New(anthropic.WithToken(apiKey), anthropic.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("create anthropic client: %w", err)
	}
	return &AnthropicClient{model: client}, nil
}

// SummarizePaper asks for the structured three-part summary of one paper.
func (c *AnthropicClient) SummarizePaper(ctx context.Context, paper domain.Paper) (string, error) {
	return generate(ctx, c.model, []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, buildPaperPrompt(paper)),
	}, paperSummaryMaxTokens, paperSummaryTemperature)
}

// SummarizeDigest asks for the executive summary across all papers.
func (c *AnthropicClient) SummarizeDigest(ctx context.Context, papers []domain.Paper) (string, error) {
	return generate(ctx, c.model, []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, buildIntroPrompt(papers)),
	}, introMaxTokens, introTemperature)
}
