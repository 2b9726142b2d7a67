package ports

import (
	"context"
	"time"

	"AIWeekly/internal/domain"
)

// PaperSource pulls fresh papers from upstream feeds.
type PaperSource interface {
	FetchRecent(ctx context.Context, cutoff time.Time) ([]domain.Paper, error)
}

// Enricher augments papers with citation counts, embeddings and GitHub stars.
// Lookup failures are absorbed per paper with zero-value defaults, so the
// slice always comes back complete.
type Enricher interface {
	Enrich(ctx context.Context, papers []domain.Paper) []domain.Paper
}

// Summarizer generates LLM summaries for individual papers and for the
// digest as a whole.
type Summarizer interface {
	SummarizePaper(ctx context.Context, paper domain.Paper) (string, error)
	SummarizeDigest(ctx context.Context, papers []domain.Paper) (string, error)
}

// ReportStore persists rendered reports and the paper history snapshot.
type ReportStore interface {
	PutReport(ctx context.Context, content string, date time.Time) (latestURL, versionedURL string, err error)
	PutHistory(ctx context.Context, papers []domain.Paper, date time.Time) (dataURL string, err error)
}

// Mailer delivers the rendered report to subscribers.
type Mailer interface {
	SendReport(ctx context.Context, markdown string, recipients []string, date time.Time) (bool, error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
