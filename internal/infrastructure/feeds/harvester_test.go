package feeds

import (
	"context"
	"errors"
	"testing"
	"time"

	"AIWeekly/internal/domain"
)

type stubSource struct {
	name   string
	papers []domain.Paper
	err    error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Fetch(_ context.Context, _ time.Time) ([]domain.Paper, error) {
	return s.papers, s.err
}

func TestHarvesterAggregatesInOrder(t *testing.T) {
	t.Parallel()

	h := NewHarvester(nil,
		stubSource{name: "arxiv", papers: []domain.Paper{{ID: "a1", Title: "First"}}},
		stubSource{name: "paperswithcode", papers: []domain.Paper{{ID: "p1", Title: "Second"}}},
	)

	papers, err := h.FetchRecent(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("FetchRecent error: %v", err)
	}

	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}
	if papers[0].ID != "a1" || papers[1].ID != "p1" {
		t.Fatalf("unexpected order: %s, %s", papers[0].ID, papers[1].ID)
	}
}

func TestHarvesterToleratesSourceFailure(t *testing.T) {
	t.Parallel()

	h := NewHarvester(nil,
		stubSource{name: "arxiv", err: errors.New("feed down")},
		stubSource{name: "paperswithcode", papers: []domain.Paper{{ID: "p1", Title: "Survivor"}}},
	)

	papers, err := h.FetchRecent(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("FetchRecent error: %v", err)
	}

	if len(papers) != 1 || papers[0].ID != "p1" {
		t.Fatalf("expected only the healthy source's paper, got %v", papers)
	}
}

func TestDedupeByTitleKeepsFirstOccurrence(t *testing.T) {
	t.Parallel()

	papers := []domain.Paper{
		{ID: "arxiv-1", Title: "Attention Is All You Need", Source: "arxiv"},
		{ID: "pwc-1", Title: "  attention is all you need ", Source: "paperswithcode"},
		{ID: "arxiv-2", Title: "A Different Paper"},
		{ID: "pwc-2", Title: "ATTENTION IS ALL\nYOU NEED"},
	}

	unique := DedupeByTitle(papers)

	if len(unique) != 2 {
		t.Fatalf("expected 2 unique papers, got %d", len(unique))
	}
	if unique[0].ID != "arxiv-1" {
		t.Fatalf("expected first occurrence to win, got %s", unique[0].ID)
	}
	if unique[1].ID != "arxiv-2" {
		t.Fatalf("unexpected second paper: %s", unique[1].ID)
	}
}

func TestDedupeByTitleEmpty(t *testing.T) {
	t.Parallel()

	if got := DedupeByTitle(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
