package domain

import "time"

// Source tags for harvested papers.
const (
	SourceArxiv          = "arxiv"
	SourcePapersWithCode = "paperswithcode"
)

// Paper is the core entity flowing through the pipeline. Harvest fills the
// identity fields; later stages only add to it (enrichment counts, score,
// summary) and never clear what an earlier stage set.
type Paper struct {
	ID          string
	Title       string
	Authors     []string
	Abstract    string
	PublishedAt time.Time
	URL         string
	Source      string
	Categories  []string

	CitationCount *int
	GitHubURL     string
	GitHubStars   *int
	Embedding     []float64

	Score   float64
	Summary string
}

// Citations returns the citation count, treating unknown as zero.
func (p Paper) Citations() int {
	if p.CitationCount == nil {
		return 0
	}
	return *p.CitationCount
}

// Stars returns the GitHub star count, treating unknown as zero.
func (p Paper) Stars() int {
	if p.GitHubStars == nil {
		return 0
	}
	return *p.GitHubStars
}

// Run statuses reported by the pipeline.
const (
	RunCompleted = "completed"
	RunError     = "error"
)

// PublishResult records where a report landed and whether email went out.
type PublishResult struct {
	LatestURL    string `json:"latest_url"`
	VersionedURL string `json:"versioned_url"`
	DataURL      string `json:"data_url"`
	EmailSent    bool   `json:"email_sent"`
}

// RunResult is the structured outcome of one pipeline execution. Field names
// follow the report consumers; optional fields are omitted when they do not
// apply to the run outcome.
type RunResult struct {
	Status           string         `json:"status"`
	Message          string         `json:"message"`
	PapersCount      *int           `json:"papers_count,omitempty"`
	PapersHarvested  int            `json:"papers_harvested,omitempty"`
	PapersPublished  int            `json:"papers_published,omitempty"`
	ErrorType        string         `json:"error_type,omitempty"`
	ExecutionSeconds float64        `json:"execution_time_seconds"`
	Publish          *PublishResult `json:"publish_result,omitempty"`
}
