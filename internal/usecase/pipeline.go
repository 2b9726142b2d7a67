package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"AIWeekly/internal/config"
	"AIWeekly/internal/domain"
	"AIWeekly/internal/logging"
	"AIWeekly/internal/ports"
	"AIWeekly/internal/rank"
	"AIWeekly/internal/report"
)

// Placeholder texts for the two degraded summarization modes. Reports keep
// rendering with these in place of generated text.
const (
	DisabledSummaryText = "Summary generation disabled - no API key provided."
	DisabledIntroText   = "AI research summary generation is currently disabled."
	FailedSummaryText   = "Summary generation failed due to technical error."
	FailedIntroText     = "This week's AI research summary could not be generated due to technical difficulties."
)

// SummarizerFactory builds a Summarizer for a backend. The pipeline takes one
// so the run decides lazily whether a client is needed at all.
type SummarizerFactory func(backend, apiKey, model string) (ports.Summarizer, error)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source        ports.PaperSource
	Enricher      ports.Enricher
	Store         ports.ReportStore
	Mailer        ports.Mailer
	NewSummarizer SummarizerFactory
	Config        *config.Config
	Logger        *slog.Logger
	Now           func() time.Time
}

// Pipeline implements the weekly digest workflow: harvest, enrich, rank,
// summarize, publish. A run never propagates an error or a panic; every
// outcome is shaped into a RunResult.
type Pipeline struct {
	source        ports.PaperSource
	enricher      ports.Enricher
	store         ports.ReportStore
	mailer        ports.Mailer
	newSummarizer SummarizerFactory
	cfg           *config.Config
	logger        *slog.Logger
	now           func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:        deps.Source,
		enricher:      deps.Enricher,
		store:         deps.Store,
		mailer:        deps.Mailer,
		newSummarizer: deps.NewSummarizer,
		cfg:           deps.Config,
		logger:        deps.Logger,
		now:           deps.Now,
	}
	if p.now == nil {
		p.now = func() time.Time {
			return time.Now().In(p.cfg.Scheduler.Location())
		}
	}
	return p
}

// FailureResult shapes a terminal error into the structured run outcome.
func FailureResult(err error, elapsed time.Duration) domain.RunResult {
	return domain.RunResult{
		Status:           domain.RunError,
		Message:          fmt.Sprintf("Pipeline execution failed: %v", err),
		ErrorType:        fmt.Sprintf("%T", err),
		ExecutionSeconds: elapsed.Seconds(),
	}
}

// Run executes one full pipeline pass. The start time is supplied by the
// caller so the reported execution time covers bootstrap work too.
func (p *Pipeline) Run(ctx context.Context, start time.Time) (result domain.RunResult) {
	log := logging.OrDiscard(p.logger)

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline panicked", "panic", r)
			result = FailureResult(fmt.Errorf("panic: %v", r), time.Since(start))
		}
	}()

	now := p.now()
	cutoff := now.AddDate(0, 0, -p.cfg.Harvest.DaysLookback)

	log.Info("step 1: harvesting papers", "cutoff", cutoff.Format("2006-01-02"))
	papers, err := p.source.FetchRecent(ctx, cutoff)
	if err != nil {
		return FailureResult(fmt.Errorf("harvest papers: %w", err), time.Since(start))
	}

	if len(papers) == 0 {
		log.Warn("no papers found to process")
		count := 0
		return domain.RunResult{
			Status:           domain.RunCompleted,
			Message:          "No papers found to process",
			PapersCount:      &count,
			ExecutionSeconds: time.Since(start).Seconds(),
		}
	}
	log.Info("harvest done", "papers", len(papers))

	log.Info("step 2: enriching papers with external data")
	papers = p.enricher.Enrich(ctx, papers)

	log.Info("step 3: ranking papers")
	top := rank.TopK(papers, p.cfg.Ranking.TopK, rank.Weights{
		Citation: p.cfg.Ranking.CitationWeight,
		GitHub:   p.cfg.Ranking.GitHubWeight,
		Social:   p.cfg.Ranking.SocialWeight,
	})

	log.Info("step 4: generating summaries", "papers", len(top))
	summarized, intro, err := p.summarize(ctx, top)
	if err != nil {
		return FailureResult(err, time.Since(start))
	}

	log.Info("step 5: publishing report")
	publish, err := p.publish(ctx, summarized, intro, now)
	if err != nil {
		return FailureResult(fmt.Errorf("publish report: %w", err), time.Since(start))
	}

	elapsed := time.Since(start)
	log.Info("pipeline completed",
		"papers_harvested", len(papers),
		"papers_published", len(summarized),
		"latest_url", publish.LatestURL,
		"email_sent", publish.EmailSent,
		"execution_time_seconds", elapsed.Seconds(),
	)

	return domain.RunResult{
		Status:           domain.RunCompleted,
		Message:          "AI Weekly pipeline executed successfully",
		PapersHarvested:  len(papers),
		PapersPublished:  len(summarized),
		ExecutionSeconds: elapsed.Seconds(),
		Publish:          &publish,
	}
}

// summarize fills in per-paper summaries and the digest intro. Three tiers:
// generated text when a key is configured and every call succeeds, disabled
// placeholders when no key is set, failure placeholders when anything about
// the backend goes wrong. Only an unsupported backend name is a run error.
func (p *Pipeline) summarize(ctx context.Context, papers []domain.Paper) ([]domain.Paper, string, error) {
	log := logging.OrDiscard(p.logger)

	apiKey, err := apiKeyFor(p.cfg.LLM)
	if err != nil {
		return nil, "", err
	}

	if apiKey == "" {
		log.Error("no api key provided", "backend", p.cfg.LLM.Backend)
		return withSummaries(papers, DisabledSummaryText), DisabledIntroText, nil
	}

	log.Info("generating summaries", "backend", p.cfg.LLM.Backend, "model", p.cfg.LLM.Model)

	summarizer, err := p.newSummarizer(p.cfg.LLM.Backend, apiKey, p.cfg.LLM.Model)
	if err != nil {
		log.Error("summarizer construction failed", "error", err)
		return withSummaries(papers, FailedSummaryText), FailedIntroText, nil
	}

	summarized := withSummaries(papers, "")
	for i := range summarized {
		summary, sErr := summarizer.SummarizePaper(ctx, summarized[i])
		if sErr != nil {
			log.Error("error during summarization", "paper", summarized[i].ID, "error", sErr)
			return withSummaries(papers, FailedSummaryText), FailedIntroText, nil
		}
		summarized[i].Summary = summary
	}

	log.Info("generating executive summary intro")
	intro, err := summarizer.SummarizeDigest(ctx, summarized)
	if err != nil {
		log.Error("error during summarization", "error", err)
		return withSummaries(papers, FailedSummaryText), FailedIntroText, nil
	}

	log.Info("summarization completed")
	return summarized, intro, nil
}

// apiKeyFor picks the credential matching the backend name, ignoring case.
// An unrecognized backend is a configuration error that fails the run; the
// error keeps the name as configured.
func apiKeyFor(cfg config.LLMConfig) (string, error) {
	switch strings.ToLower(cfg.Backend) {
	case "openai":
		return cfg.OpenAIKey, nil
	case "anthropic":
		return cfg.AnthropicKey, nil
	default:
		return "", fmt.Errorf("Unsupported LLM backend: %s", cfg.Backend)
	}
}

func withSummaries(papers []domain.Paper, text string) []domain.Paper {
	out := make([]domain.Paper, len(papers))
	copy(out, papers)
	for i := range out {
		out[i].Summary = text
	}
	return out
}

// publish renders the report, stores it with the history snapshot, and then
// optionally emails it. A failed email is logged and reported as unsent; it
// does not fail the run.
func (p *Pipeline) publish(ctx context.Context, papers []domain.Paper, intro string, now time.Time) (domain.PublishResult, error) {
	markdown := report.Render(papers, intro, now, now)

	latestURL, versionedURL, err := p.store.PutReport(ctx, markdown, now)
	if err != nil {
		return domain.PublishResult{}, err
	}

	dataURL, err := p.store.PutHistory(ctx, papers, now)
	if err != nil {
		return domain.PublishResult{}, err
	}

	result := domain.PublishResult{
		LatestURL:    latestURL,
		VersionedURL: versionedURL,
		DataURL:      dataURL,
	}

	if p.mailer == nil || p.cfg.Email.Sender == "" || len(p.cfg.Email.Subscribers) == 0 {
		return result, nil
	}

	sent, err := p.mailer.SendReport(ctx, markdown, p.cfg.Email.Subscribers, now)
	if err != nil {
		logging.OrDiscard(p.logger).Error("failed to send email", "error", err)
		return result, nil
	}
	result.EmailSent = sent
	return result, nil
}
