package enrich

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"AIWeekly/internal/domain"
	"AIWeekly/internal/logging"
	"AIWeekly/internal/ports"
)

func intRef(n int) *int { return &n }

// Enricher decorates harvested papers with citation counts, SPECTER2
// embeddings and GitHub star counts. Lookups are best-effort: any failure
// leaves a zero count so ranking always sees a complete signal set. Outbound
// calls share a token bucket to keep a polite pace against both APIs.
type Enricher struct {
	s2      *semanticScholarClient
	github  *githubClient
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ports.Enricher = (*Enricher)(nil)

// NewEnricher wires both metadata clients on a shared HTTP client; a nil
// client gets a 10s timeout, a non-positive delay falls back to 100ms.
func NewEnricher(client *http.Client, s2APIKey, githubToken string, delay time.Duration, log *slog.Logger) *Enricher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &Enricher{
		s2:      newSemanticScholarClient(client, s2APIKey, log),
		github:  newGitHubClient(client, githubToken, log),
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		logger:  log,
	}
}

// Enrich runs every paper through Semantic Scholar and GitHub in order and
// returns the augmented slice.
func (e *Enricher) Enrich(ctx context.Context, papers []domain.Paper) []domain.Paper {
	log := logging.OrDiscard(e.logger)
	log.Info("enriching papers", "count", len(papers))

	enriched := make([]domain.Paper, 0, len(papers))
	for _, paper := range papers {
		paper = e.enrichCitations(ctx, paper)
		paper = e.enrichRepoStars(ctx, paper)
		enriched = append(enriched, paper)
	}

	log.Info("paper enrichment completed")
	return enriched
}

func (e *Enricher) enrichCitations(ctx context.Context, paper domain.Paper) domain.Paper {
	if err := e.limiter.Wait(ctx); err != nil {
		paper.CitationCount = intRef(0)
		return paper
	}

	found, ok := e.s2.lookup(ctx, paper)
	if !ok {
		paper.CitationCount = intRef(0)
		logging.OrDiscard(e.logger).Debug("paper not found in semantic scholar", "title", paper.Title)
		return paper
	}

	paper.CitationCount = intRef(found.CitationCount)
	if embedding := e.s2.embedding(ctx, found.PaperID); len(embedding) > 0 {
		paper.Embedding = embedding
	}
	return paper
}

func (e *Enricher) enrichRepoStars(ctx context.Context, paper domain.Paper) domain.Paper {
	if paper.GitHubURL == "" {
		paper.GitHubURL = extractRepoURL(paper.Abstract + " " + paper.Title)
	}
	if paper.GitHubURL == "" {
		paper.GitHubStars = intRef(0)
		return paper
	}

	if err := e.limiter.Wait(ctx); err != nil {
		paper.GitHubStars = intRef(0)
		return paper
	}

	paper.GitHubStars = intRef(e.github.repoStars(ctx, paper.GitHubURL))
	return paper
}
