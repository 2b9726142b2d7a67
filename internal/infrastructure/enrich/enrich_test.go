package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"AIWeekly/internal/domain"
)

func TestTitlesSimilar(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "Attention Is All You Need", "Attention Is All You Need", true},
		{"case and punctuation ignored", "Attention Is All You Need!", "attention is all you need", true},
		{"at threshold", "alpha beta gamma delta epsilon", "alpha beta gamma delta", true},
		{"below threshold", "alpha beta gamma delta epsilon", "alpha beta gamma", false},
		{"disjoint", "Graph Neural Networks", "Quantum Error Correction", false},
		{"empty left", "", "Some Title", false},
		{"empty right", "Some Title", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := titlesSimilar(tc.a, tc.b); got != tc.want {
				t.Fatalf("titlesSimilar(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if got := titlesSimilar(tc.b, tc.a); got != tc.want {
				t.Fatalf("titlesSimilar(%q, %q) = %v, want %v (asymmetric)", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestExtractRepoURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want string
	}{
		{"full url", "Code at https://github.com/ada/tool for details", "https://github.com/ada/tool"},
		{"schemeless", "See github.com/ada/tool for code", "https://github.com/ada/tool"},
		{"no repo", "No repository is mentioned here", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractRepoURL(tc.text); got != tc.want {
				t.Fatalf("extractRepoURL(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestRepoStars(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		switch r.URL.Path {
		case "/repos/ada/tool":
			_, _ = w.Write([]byte(`{"stargazers_count": 321}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newGitHubClient(server.Client(), "", nil)
	client.baseURL = server.URL

	if stars := client.repoStars(context.Background(), "https://github.com/ada/tool.git"); stars != 321 {
		t.Fatalf("expected 321 stars, got %d", stars)
	}
	if gotPath != "/repos/ada/tool" {
		t.Fatalf("expected .git suffix stripped, requested %s", gotPath)
	}

	if stars := client.repoStars(context.Background(), "https://github.com/ada/missing"); stars != 0 {
		t.Fatalf("expected 0 stars for 404, got %d", stars)
	}

	if stars := client.repoStars(context.Background(), "not a repo url"); stars != 0 {
		t.Fatalf("expected 0 stars for malformed url, got %d", stars)
	}
}

func newEnrichServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/paper/arXiv:2511.00001v1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"paperId": "s2id1", "title": "Fresh Paper", "citationCount": 42}`))
	})
	mux.HandleFunc("/paper/s2id1/embedding", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding": [0.1, 0.2, 0.3]}`))
	})
	mux.HandleFunc("/paper/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"paperId": "s2id2", "title": "Trendy Paper", "citationCount": 7}]}`))
	})
	mux.HandleFunc("/repos/ada/tool", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"stargazers_count": 321}`))
	})
	return httptest.NewServer(mux)
}

func newTestEnricher(server *httptest.Server) *Enricher {
	e := NewEnricher(server.Client(), "", "", time.Millisecond, nil)
	e.s2.baseURL = server.URL
	e.github.baseURL = server.URL
	return e
}

func TestEnrichArxivPaper(t *testing.T) {
	t.Parallel()

	server := newEnrichServer()
	defer server.Close()
	e := newTestEnricher(server)

	papers := e.Enrich(context.Background(), []domain.Paper{{
		ID:       "2511.00001v1",
		Title:    "Fresh Paper",
		Abstract: "Code at https://github.com/ada/tool with benchmarks",
		Source:   domain.SourceArxiv,
	}})

	if len(papers) != 1 {
		t.Fatalf("expected 1 paper, got %d", len(papers))
	}
	p := papers[0]

	if p.Citations() != 42 {
		t.Fatalf("expected 42 citations, got %d", p.Citations())
	}
	if len(p.Embedding) != 3 {
		t.Fatalf("expected embedding of length 3, got %v", p.Embedding)
	}
	if p.GitHubURL != "https://github.com/ada/tool" {
		t.Fatalf("expected repo url extracted from abstract, got %q", p.GitHubURL)
	}
	if p.Stars() != 321 {
		t.Fatalf("expected 321 stars, got %d", p.Stars())
	}
}

func TestEnrichFallsBackToTitleSearch(t *testing.T) {
	t.Parallel()

	server := newEnrichServer()
	defer server.Close()
	e := newTestEnricher(server)

	papers := e.Enrich(context.Background(), []domain.Paper{{
		ID:        "trendy-paper",
		Title:     "Trendy Paper",
		Source:    domain.SourcePapersWithCode,
		GitHubURL: "https://github.com/ada/tool",
	}})

	p := papers[0]
	if p.Citations() != 7 {
		t.Fatalf("expected 7 citations via title search, got %d", p.Citations())
	}
	if p.Stars() != 321 {
		t.Fatalf("expected stars from preset repo url, got %d", p.Stars())
	}
}

func TestEnrichRejectsDissimilarSearchHit(t *testing.T) {
	t.Parallel()

	server := newEnrichServer()
	defer server.Close()
	e := newTestEnricher(server)

	papers := e.Enrich(context.Background(), []domain.Paper{{
		ID:     "unrelated",
		Title:  "Completely Different Subject Entirely",
		Source: domain.SourcePapersWithCode,
	}})

	p := papers[0]
	if p.CitationCount == nil {
		t.Fatalf("expected citation count to be set")
	}
	if p.Citations() != 0 {
		t.Fatalf("expected 0 citations for rejected hit, got %d", p.Citations())
	}
}

func TestEnrichDefaultsOnAPIFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()
	e := newTestEnricher(server)

	papers := e.Enrich(context.Background(), []domain.Paper{{
		ID:     "2511.00002v1",
		Title:  "Unlucky Paper",
		Source: domain.SourceArxiv,
	}})

	p := papers[0]
	if p.CitationCount == nil || p.Citations() != 0 {
		t.Fatalf("expected citation count defaulted to 0, got %v", p.CitationCount)
	}
	if p.GitHubStars == nil || p.Stars() != 0 {
		t.Fatalf("expected stars defaulted to 0, got %v", p.GitHubStars)
	}
	if p.Embedding != nil {
		t.Fatalf("expected no embedding, got %v", p.Embedding)
	}
}
