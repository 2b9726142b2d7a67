package enrich

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"AIWeekly/internal/domain"
	"AIWeekly/internal/logging"
)

const (
	semanticScholarBaseURL   = "https://api.semanticscholar.org/graph/v1"
	semanticScholarFields    = "paperId,title,citationCount"
	titleSimilarityThreshold = 0.8
)

var nonWordExpr = regexp.MustCompile(`[^\w\s]`)

type s2Paper struct {
	PaperID       string `json:"paperId"`
	Title         string `json:"title"`
	CitationCount int    `json:"citationCount"`
}

// semanticScholarClient resolves papers against the Semantic Scholar graph
// API. Every method is best-effort: a miss or transport failure reads as
// "not found" and is logged at debug level only.
type semanticScholarClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

func newSemanticScholarClient(client *http.Client, apiKey string, log *slog.Logger) *semanticScholarClient {
	return &semanticScholarClient{
		client:  client,
		baseURL: semanticScholarBaseURL,
		apiKey:  apiKey,
		logger:  log,
	}
}

// lookup resolves a paper by arXiv ID when possible, falling back to a title
// search whose top hit must clear the similarity threshold.
func (c *semanticScholarClient) lookup(ctx context.Context, paper domain.Paper) (s2Paper, bool) {
	if paper.Source == domain.SourceArxiv {
		if found, ok := c.searchByArxivID(ctx, paper.ID); ok {
			return found, true
		}
	}
	return c.searchByTitle(ctx, paper.Title)
}

func (c *semanticScholarClient) searchByArxivID(ctx context.Context, arxivID string) (s2Paper, bool) {
	var out s2Paper
	endpoint := c.baseURL + "/paper/arXiv:" + arxivID
	params := url.Values{"fields": {semanticScholarFields}}
	if !c.getJSON(ctx, endpoint, params, &out) {
		return s2Paper{}, false
	}
	return out, true
}

func (c *semanticScholarClient) searchByTitle(ctx context.Context, title string) (s2Paper, bool) {
	var out struct {
		Data []s2Paper `json:"data"`
	}
	endpoint := c.baseURL + "/paper/search"
	params := url.Values{
		"query":  {title},
		"limit":  {"1"},
		"fields": {semanticScholarFields},
	}
	if !c.getJSON(ctx, endpoint, params, &out) || len(out.Data) == 0 {
		return s2Paper{}, false
	}

	found := out.Data[0]
	if !titlesSimilar(title, found.Title) {
		logging.OrDiscard(c.logger).Debug("search hit rejected by title similarity", "query", title, "hit", found.Title)
		return s2Paper{}, false
	}
	return found, true
}

func (c *semanticScholarClient) embedding(ctx context.Context, paperID string) []float64 {
	if paperID == "" {
		return nil
	}
	var out struct {
		Embedding []float64 `json:"embedding"`
	}
	endpoint := c.baseURL + "/paper/" + paperID + "/embedding"
	params := url.Values{"model": {"specter2"}}
	if !c.getJSON(ctx, endpoint, params, &out) {
		return nil
	}
	return out.Embedding
}

func (c *semanticScholarClient) getJSON(ctx context.Context, endpoint string, params url.Values, v interface{}) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		logging.OrDiscard(c.logger).Debug("semantic scholar request build failed", "url", endpoint, "error", err)
		return false
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logging.OrDiscard(c.logger).Debug("semantic scholar request failed", "url", endpoint, "error", err)
		return false
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		logging.OrDiscard(c.logger).Debug("semantic scholar returned non-200", "url", endpoint, "status", resp.Status)
		return false
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		logging.OrDiscard(c.logger).Debug("semantic scholar decode failed", "url", endpoint, "error", err)
		return false
	}

	if err := resp.Body.Close(); err != nil {
		logging.OrDiscard(c.logger).Debug("semantic scholar close body failed", "url", endpoint, "error", err)
		return false
	}

	return true
}

// titlesSimilar reports whether the Jaccard similarity of the two titles'
// word sets reaches the match threshold. Case and punctuation are ignored,
// so the comparison is symmetric in its arguments.
func titlesSimilar(a, b string) bool {
	wordsA := titleWords(a)
	wordsB := titleWords(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return false
	}

	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection

	return float64(intersection)/float64(union) >= titleSimilarityThreshold
}

func titleWords(title string) map[string]struct{} {
	clean := nonWordExpr.ReplaceAllString(strings.ToLower(title), "")
	words := map[string]struct{}{}
	for _, w := range strings.Fields(clean) {
		words[w] = struct{}{}
	}
	return words
}
