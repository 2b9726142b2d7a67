package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"AIWeekly/internal/logging"
)

const githubAPIBaseURL = "https://api.github.com"

var (
	repoURLExprs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)https?://github\.com/[a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+`),
		regexp.MustCompile(`(?i)github\.com/[a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+`),
	}
	repoPathExpr = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)`)
)

// extractRepoURL finds the first GitHub repository link in free text,
// normalizing schemeless mentions to https.
func extractRepoURL(text string) string {
	for _, expr := range repoURLExprs {
		if match := expr.FindString(text); match != "" {
			if !strings.HasPrefix(strings.ToLower(match), "http") {
				match = "https://" + match
			}
			return match
		}
	}
	return ""
}

// githubClient reads repository star counts. All failure modes collapse to
// zero stars so enrichment never blocks on GitHub.
type githubClient struct {
	client  *http.Client
	baseURL string
	token   string
	logger  *slog.Logger
}

func newGitHubClient(client *http.Client, token string, log *slog.Logger) *githubClient {
	return &githubClient{
		client:  client,
		baseURL: githubAPIBaseURL,
		token:   token,
		logger:  log,
	}
}

func (c *githubClient) repoStars(ctx context.Context, repoURL string) int {
	match := repoPathExpr.FindStringSubmatch(repoURL)
	if match == nil {
		return 0
	}
	owner := match[1]
	repo := strings.ReplaceAll(match[2], ".git", "")

	endpoint := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		logging.OrDiscard(c.logger).Debug("github request build failed", "repo", owner+"/"+repo, "error", err)
		return 0
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logging.OrDiscard(c.logger).Error("github request failed", "repo", owner+"/"+repo, "error", err)
		return 0
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out struct {
			StargazersCount int `json:"stargazers_count"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			logging.OrDiscard(c.logger).Error("github decode failed", "repo", owner+"/"+repo, "error", err)
			return 0
		}
		return out.StargazersCount
	case http.StatusNotFound:
		logging.OrDiscard(c.logger).Debug("repository not found", "repo", owner+"/"+repo)
		return 0
	default:
		logging.OrDiscard(c.logger).Warn("github returned unexpected status", "repo", owner+"/"+repo, "status", resp.Status)
		return 0
	}
}
