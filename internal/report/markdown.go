package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"AIWeekly/internal/domain"
)

const maxListedAuthors = 3

const reportHeader = `---
title: "AI Research Weekly - %s"
date: "%s"
description: "Weekly digest of top AI research papers"
---

# AI Research Weekly - %s

%s

## Featured Papers

`

const methodologyFooter = "\n## Methodology\n\n" +
	"This digest was automatically generated using the following methodology:\n\n" +
	"1. **Paper Collection:** Harvested from arXiv (cs.AI, cs.LG, cs.CL, cs.CV) and PapersWithCode\n" +
	"   trending papers from the last 7 days\n" +
	"2. **Enrichment:** Enhanced with citation counts from Semantic Scholar and GitHub star counts\n" +
	"   where available\n" +
	"3. **Ranking:** Scored using formula: `0.5×log(citations+1) + 0.3×normalized_github_stars +\n" +
	"   0.2×social_buzz`\n" +
	"4. **Summarization:** Generated using LLM analysis of abstracts and titles\n\n" +
	"Generated on %s\n"

var linkExpr = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)

// Render assembles the digest markdown: front matter, the intro, one section
// per ranked paper and a methodology footer stamped with the generation time.
func Render(papers []domain.Paper, intro string, date, generatedAt time.Time) string {
	dateStr := date.Format("2006-01-02")

	var b strings.Builder
	fmt.Fprintf(&b, reportHeader, dateStr, date.Format("2006-01-02T15:04:05"), dateStr, intro)

	for i, paper := range papers {
		writePaperSection(&b, i+1, paper)
	}

	fmt.Fprintf(&b, methodologyFooter, generatedAt.UTC().Format("2006-01-02 15:04:05")+" UTC")
	return b.String()
}

// Lines inside a section end with two spaces so markdown renderers keep the
// hard line breaks.
func writePaperSection(b *strings.Builder, index int, paper domain.Paper) {
	authors := strings.Join(truncateAuthors(paper.Authors), ", ")
	if len(paper.Authors) > maxListedAuthors {
		authors += " et al."
	}

	fmt.Fprintf(b, "### %d. %s\n\n", index, paper.Title)
	fmt.Fprintf(b, "**Authors:** %s  \n", authors)
	fmt.Fprintf(b, "**Published:** %s  \n", paper.PublishedAt.Format("2006-01-02"))

	if paper.CitationCount != nil {
		fmt.Fprintf(b, "**Citations:** %d  \n", *paper.CitationCount)
	}
	if paper.GitHubURL != "" && paper.GitHubStars != nil {
		fmt.Fprintf(b, "**GitHub:** [%s](%s) (%d ⭐)  \n", paper.GitHubURL, paper.GitHubURL, *paper.GitHubStars)
	}

	fmt.Fprintf(b, "**Score:** %.2f  \n", paper.Score)
	fmt.Fprintf(b, "**Link:** [%s](%s)  \n\n", paper.URL, paper.URL)

	if paper.Summary != "" {
		fmt.Fprintf(b, "%s\n\n", paper.Summary)
	}

	b.WriteString("---\n\n")
}

func truncateAuthors(authors []string) []string {
	if len(authors) > maxListedAuthors {
		return authors[:maxListedAuthors]
	}
	return authors
}

// PlainText reduces report markdown to an email-friendly body: the front
// matter block is dropped, emphasis and heading markers are removed and links
// collapse to their text.
func PlainText(markdown string) string {
	lines := strings.Split(markdown, "\n")
	if lines[0] == "---" {
		end := 1
		for end < len(lines) && lines[end] != "---" {
			end++
		}
		if end >= len(lines) {
			lines = nil
		} else {
			lines = lines[end+1:]
		}
	}

	text := strings.Join(lines, "\n")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "### ", "")
	text = strings.ReplaceAll(text, "## ", "")
	text = strings.ReplaceAll(text, "# ", "")
	text = linkExpr.ReplaceAllString(text, "$1")

	return strings.TrimSpace(text)
}
