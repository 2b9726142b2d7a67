package feeds

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"AIWeekly/internal/domain"
	"AIWeekly/internal/logging"
	"AIWeekly/internal/ports"
)

const userAgent = "AIWeekly/1.0"

// Source pulls papers from one upstream feed.
type Source interface {
	Name() string
	Fetch(ctx context.Context, cutoff time.Time) ([]domain.Paper, error)
}

// Harvester aggregates papers across feeds in registration order. A failed
// source is logged and contributes zero papers; the remaining sources still
// run, so one dead feed never aborts a harvest.
type Harvester struct {
	sources []Source
	logger  *slog.Logger
}

var _ ports.PaperSource = (*Harvester)(nil)

// NewHarvester wires the feed sources in the order they should be queried.
func NewHarvester(log *slog.Logger, sources ...Source) *Harvester {
	return &Harvester{sources: sources, logger: log}
}

// FetchRecent gathers papers from every source, then deduplicates them by
// normalized title, keeping the first occurrence.
func (h *Harvester) FetchRecent(ctx context.Context, cutoff time.Time) ([]domain.Paper, error) {
	log := logging.OrDiscard(h.logger)

	var aggregated []domain.Paper
	for _, source := range h.sources {
		papers, err := source.Fetch(ctx, cutoff)
		if err != nil {
			log.Error("harvest source failed", "source", source.Name(), "error", err)
			continue
		}
		log.Debug("harvest source done", "source", source.Name(), "count", len(papers))
		aggregated = append(aggregated, papers...)
	}

	unique := DedupeByTitle(aggregated)
	log.Info("harvest complete", "total", len(aggregated), "unique", len(unique))
	return unique, nil
}

// DedupeByTitle drops papers whose normalized title was already seen. Titles
// are compared lower-cased with whitespace runs collapsed, so the same paper
// arriving from two feeds with cosmetic title differences counts once.
func DedupeByTitle(papers []domain.Paper) []domain.Paper {
	unique := make([]domain.Paper, 0, len(papers))
	seen := map[string]struct{}{}
	for _, paper := range papers {
		key := normalizeTitle(paper.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, paper)
	}
	return unique
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
