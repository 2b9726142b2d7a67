package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"AIWeekly/internal/domain"
)

const (
	papersWithCodeAPIURL   = "https://paperswithcode.com/api/v1/papers/"
	papersWithCodePageSize = 50
)

// PapersWithCodeSource pulls the trending papers list, ordered by GitHub
// activity so the most talked-about work comes first.
type PapersWithCodeSource struct {
	client  *http.Client
	baseURL string
}

// NewPapersWithCodeSource wires an HTTP client; a nil client gets a 30s timeout.
func NewPapersWithCodeSource(client *http.Client) *PapersWithCodeSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &PapersWithCodeSource{client: client, baseURL: papersWithCodeAPIURL}
}

// Name identifies the source in harvester logs.
func (p *PapersWithCodeSource) Name() string {
	return domain.SourcePapersWithCode
}

type pwcListResponse struct {
	Results []pwcPaper `json:"results"`
}

type pwcPaper struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Abstract  string   `json:"abstract"`
	Published string   `json:"published"`
	URLAbs    string   `json:"url_abs"`
	GitHubURL string   `json:"github_url"`
}

// Fetch returns trending papers published at or after the cutoff. Items
// without a parseable publication date are skipped. A repository URL on the
// item is carried onto the paper so enrichment can skip the abstract scan.
func (p *PapersWithCodeSource) Fetch(ctx context.Context, cutoff time.Time) ([]domain.Paper, error) {
	endpoint, err := buildTrendingQuery(p.baseURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request trending papers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paperswithcode returned %s", resp.Status)
	}

	var payload pwcListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	papers := make([]domain.Paper, 0, len(payload.Results))
	for _, item := range payload.Results {
		publishedAt, ok := parsePublished(item.Published)
		if !ok || publishedAt.Before(cutoff) {
			continue
		}
		papers = append(papers, domain.Paper{
			ID:          item.ID,
			Title:       item.Title,
			Authors:     append([]string(nil), item.Authors...),
			Abstract:    item.Abstract,
			PublishedAt: publishedAt,
			URL:         item.URLAbs,
			Source:      domain.SourcePapersWithCode,
			Categories:  []string{},
			GitHubURL:   item.GitHubURL,
		})
	}
	return papers, nil
}

func parsePublished(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func buildTrendingQuery(base string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid feed url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("ordering", "-github_mentions")
	query.Set("page_size", strconv.Itoa(papersWithCodePageSize))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
