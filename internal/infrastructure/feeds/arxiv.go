package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"AIWeekly/internal/domain"
	"AIWeekly/internal/logging"
)

const (
	arxivAPIURL     = "http://export.arxiv.org/api/query"
	arxivMaxResults = 100
)

// ArxivSource queries the arXiv Atom API for recent submissions, one request
// per configured category.
type ArxivSource struct {
	client     *http.Client
	parser     *gofeed.Parser
	baseURL    string
	categories []string
	logger     *slog.Logger
}

// NewArxivSource wires an HTTP client; a nil client gets a 30s timeout.
func NewArxivSource(client *http.Client, categories []string, log *slog.Logger) *ArxivSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ArxivSource{
		client:     client,
		parser:     gofeed.NewParser(),
		baseURL:    arxivAPIURL,
		categories: categories,
		logger:     log,
	}
}

// Name identifies the source in harvester logs.
func (a *ArxivSource) Name() string {
	return domain.SourceArxiv
}

// Fetch walks the configured categories and returns submissions published at
// or after the cutoff. A category that fails to download or parse is logged
// and contributes nothing; the remaining categories still run.
func (a *ArxivSource) Fetch(ctx context.Context, cutoff time.Time) ([]domain.Paper, error) {
	papers := make([]domain.Paper, 0)
	for _, category := range a.categories {
		fetched, err := a.fetchCategory(ctx, category, cutoff)
		if err != nil {
			logging.OrDiscard(a.logger).Error("fetch arxiv category failed", "category", category, "error", err)
			continue
		}
		logging.OrDiscard(a.logger).Debug("fetched arxiv category", "category", category, "count", len(fetched))
		papers = append(papers, fetched...)
	}
	return papers, nil
}

func (a *ArxivSource) fetchCategory(ctx context.Context, category string, cutoff time.Time) ([]domain.Paper, error) {
	endpoint, err := buildArxivQuery(a.baseURL, category)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	feed, err := a.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	papers := make([]domain.Paper, 0, len(feed.Items))
	for _, item := range feed.Items {
		paper, ok := paperFromEntry(item)
		if !ok {
			continue
		}
		if paper.PublishedAt.Before(cutoff) {
			continue
		}
		papers = append(papers, paper)
	}
	return papers, nil
}

// paperFromEntry maps one Atom entry onto a Paper. Entries without a
// parseable publication date are dropped.
func paperFromEntry(item *gofeed.Item) (domain.Paper, bool) {
	if item == nil || item.PublishedParsed == nil {
		return domain.Paper{}, false
	}

	id := item.GUID
	if idx := strings.LastIndex(id, "/abs/"); idx >= 0 {
		id = id[idx+len("/abs/"):]
	}

	authors := make([]string, 0, len(item.Authors))
	for _, author := range item.Authors {
		if author != nil && author.Name != "" {
			authors = append(authors, author.Name)
		}
	}

	return domain.Paper{
		ID:          id,
		Title:       flattenText(item.Title),
		Authors:     authors,
		Abstract:    flattenText(item.Description),
		PublishedAt: item.PublishedParsed.UTC(),
		URL:         item.Link,
		Source:      domain.SourceArxiv,
		Categories:  append([]string(nil), item.Categories...),
	}, true
}

// flattenText removes the hard line breaks arXiv inserts into long titles
// and abstracts.
func flattenText(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, "\n", " "))
}

func buildArxivQuery(base, category string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid feed url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("search_query", "cat:"+category)
	query.Set("start", "0")
	query.Set("max_results", strconv.Itoa(arxivMaxResults))
	query.Set("sortBy", "submittedDate")
	query.Set("sortOrder", "descending")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
