package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AIWeekly/internal/domain"
)

func intPtr(n int) *int { return &n }

func samplePaper() domain.Paper {
	return domain.Paper{
		ID:            "2511.00001v1",
		Title:         "Sparse Attention at Scale",
		Authors:       []string{"Ada Lovelace", "Grace Hopper"},
		PublishedAt:   time.Date(2025, 11, 6, 9, 30, 0, 0, time.UTC),
		URL:           "https://arxiv.org/abs/2511.00001v1",
		CitationCount: intPtr(12),
		GitHubURL:     "https://github.com/ada/sparse",
		GitHubStars:   intPtr(340),
		Score:         1.2345,
		Summary:       "Trains sparse attention end to end.",
	}
}

func TestRenderHeader(t *testing.T) {
	t.Parallel()

	date := time.Date(2025, 11, 7, 8, 15, 0, 0, time.UTC)
	got := Render(nil, "A quiet week.", date, date)

	assert.True(t, strings.HasPrefix(got, "---\n"))
	assert.Contains(t, got, `title: "AI Research Weekly - 2025-11-07"`)
	assert.Contains(t, got, `date: "2025-11-07T08:15:00"`)
	assert.Contains(t, got, "# AI Research Weekly - 2025-11-07\n\nA quiet week.\n\n## Featured Papers\n")
}

func TestRenderPaperSection(t *testing.T) {
	t.Parallel()

	date := time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC)
	got := Render([]domain.Paper{samplePaper()}, "Intro.", date, date)

	assert.Contains(t, got, "### 1. Sparse Attention at Scale\n\n")
	assert.Contains(t, got, "**Authors:** Ada Lovelace, Grace Hopper  \n")
	assert.Contains(t, got, "**Published:** 2025-11-06  \n")
	assert.Contains(t, got, "**Citations:** 12  \n")
	assert.Contains(t, got, "**GitHub:** [https://github.com/ada/sparse](https://github.com/ada/sparse) (340 ⭐)  \n")
	assert.Contains(t, got, "**Score:** 1.23  \n")
	assert.Contains(t, got, "**Link:** [https://arxiv.org/abs/2511.00001v1](https://arxiv.org/abs/2511.00001v1)  \n\n")
	assert.Contains(t, got, "Trains sparse attention end to end.\n\n---\n")
}

func TestRenderTruncatesLongAuthorList(t *testing.T) {
	t.Parallel()

	paper := samplePaper()
	paper.Authors = []string{"A One", "B Two", "C Three", "D Four", "E Five"}

	date := time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC)
	got := Render([]domain.Paper{paper}, "Intro.", date, date)

	assert.Contains(t, got, "**Authors:** A One, B Two, C Three et al.  \n")
	assert.NotContains(t, got, "D Four")
}

func TestRenderOmitsMissingSignals(t *testing.T) {
	t.Parallel()

	paper := samplePaper()
	paper.CitationCount = nil
	paper.GitHubURL = ""
	paper.GitHubStars = nil
	paper.Summary = ""

	date := time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC)
	got := Render([]domain.Paper{paper}, "Intro.", date, date)

	assert.NotContains(t, got, "**Citations:**")
	assert.NotContains(t, got, "**GitHub:**")
	assert.Contains(t, got, "**Score:** 1.23  \n")
}

func TestRenderGitHubLineNeedsBothURLAndStars(t *testing.T) {
	t.Parallel()

	paper := samplePaper()
	paper.GitHubStars = nil

	date := time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC)
	got := Render([]domain.Paper{paper}, "Intro.", date, date)

	assert.NotContains(t, got, "**GitHub:**")
}

func TestRenderFooter(t *testing.T) {
	t.Parallel()

	date := time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC)
	generated := time.Date(2025, 11, 7, 6, 0, 3, 0, time.UTC)
	got := Render(nil, "Intro.", date, generated)

	assert.Contains(t, got, "\n## Methodology\n")
	assert.Contains(t, got, "`0.5×log(citations+1) + 0.3×normalized_github_stars +\n   0.2×social_buzz`")
	assert.True(t, strings.HasSuffix(got, "Generated on 2025-11-07 06:00:03 UTC\n"))
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	date := time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC)
	markdown := Render([]domain.Paper{samplePaper()}, "Intro.", date, date)

	got := PlainText(markdown)

	require.NotEmpty(t, got)
	assert.False(t, strings.HasPrefix(got, "---"))
	assert.NotContains(t, got, `title: "AI Research Weekly`)
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "### ")
	assert.Contains(t, got, "AI Research Weekly - 2025-11-07")
	assert.Contains(t, got, "1. Sparse Attention at Scale")
	assert.Contains(t, got, "Link: https://arxiv.org/abs/2511.00001v1")
	assert.NotContains(t, got, "[https://arxiv.org/abs/2511.00001v1]")
}

func TestPlainTextWithoutFrontMatter(t *testing.T) {
	t.Parallel()

	got := PlainText("# Title\n\nSome **bold** text with a [link](https://example.com).\n")

	assert.Equal(t, "Title\n\nSome bold text with a link.", got)
}
