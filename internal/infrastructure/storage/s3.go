package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/parquet-go/parquet-go"

	"AIWeekly/internal/config"
	"AIWeekly/internal/domain"
	"AIWeekly/internal/logging"
	"AIWeekly/internal/ports"
)

// objectPutter is the slice of the S3 API the store depends on.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps every published artifact in one bucket: the current report
// under the latest prefix, a dated copy under reports/<year>/<month> and a
// columnar history snapshot per run. All objects are server-side encrypted.
type S3Store struct {
	client objectPutter
	cfg    config.ReportConfig
	logger *slog.Logger
}

var _ ports.ReportStore = (*S3Store)(nil)

// NewS3Store wires the bucket and key prefixes from configuration.
func NewS3Store(client objectPutter, cfg config.ReportConfig, log *slog.Logger) *S3Store {
	return &S3Store{client: client, cfg: cfg, logger: log}
}

// PutReport uploads the markdown twice, first to the latest prefix and then
// to the dated archive, and returns both object URLs.
func (s *S3Store) PutReport(ctx context.Context, content string, date time.Time) (string, string, error) {
	filename := "ai-weekly-" + date.Format("2006-01-02") + ".md"

	latestKey := s.cfg.LatestPrefix + filename
	if err := s.upload(ctx, latestKey, []byte(content), "text/markdown"); err != nil {
		return "", "", err
	}

	versionedKey := fmt.Sprintf("%s%d/%02d/%s", s.cfg.ReportsPrefix, date.Year(), int(date.Month()), filename)
	if err := s.upload(ctx, versionedKey, []byte(content), "text/markdown"); err != nil {
		return "", "", err
	}

	latestURL := s.objectURL(latestKey)
	versionedURL := s.objectURL(versionedKey)
	logging.OrDiscard(s.logger).Info("published report", "latest", latestURL, "versioned", versionedURL)
	return latestURL, versionedURL, nil
}

// PutHistory encodes the papers as parquet and uploads the snapshot under the
// history prefix, keyed by run date.
func (s *S3Store) PutHistory(ctx context.Context, papers []domain.Paper, date time.Time) (string, error) {
	snapshot, err := encodeHistory(papers, date)
	if err != nil {
		return "", err
	}

	key := s.cfg.HistoryPrefix + "papers-" + date.Format("2006-01-02") + ".parquet"
	if err := s.upload(ctx, key, snapshot, "application/octet-stream"); err != nil {
		return "", err
	}

	url := s.objectURL(key)
	logging.OrDiscard(s.logger).Info("saved paper history", "url", url, "papers", len(papers))
	return url, nil
}

func (s *S3Store) upload(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.cfg.Bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(body),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) objectURL(key string) string {
	return "s3://" + s.cfg.Bucket + "/" + key
}

// paperRow is the columnar schema for history snapshots. Missing signals stay
// null rather than defaulting, so downstream analysis can tell "no citations
// found" from "zero citations".
type paperRow struct {
	ID            string    `parquet:"id"`
	Title         string    `parquet:"title"`
	Authors       []string  `parquet:"authors,list"`
	Abstract      string    `parquet:"abstract"`
	PublishedDate string    `parquet:"published_date"`
	URL           string    `parquet:"url"`
	Source        string    `parquet:"source"`
	Categories    []string  `parquet:"categories,list"`
	CitationCount *int64    `parquet:"citation_count,optional"`
	GitHubURL     *string   `parquet:"github_url,optional"`
	GitHubStars   *int64    `parquet:"github_stars,optional"`
	Embedding     []float64 `parquet:"specter2_embedding,list"`
	Score         float64   `parquet:"score"`
	Summary       *string   `parquet:"summary,optional"`
	ProcessedDate string    `parquet:"processed_date"`
}

func encodeHistory(papers []domain.Paper, date time.Time) ([]byte, error) {
	rows := make([]paperRow, 0, len(papers))
	for _, paper := range papers {
		rows = append(rows, rowFromPaper(paper, date))
	}

	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[paperRow](&buf)
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func rowFromPaper(paper domain.Paper, date time.Time) paperRow {
	row := paperRow{
		ID:            paper.ID,
		Title:         paper.Title,
		Authors:       paper.Authors,
		Abstract:      paper.Abstract,
		PublishedDate: paper.PublishedAt.Format("2006-01-02T15:04:05"),
		URL:           paper.URL,
		Source:        paper.Source,
		Categories:    paper.Categories,
		Embedding:     paper.Embedding,
		Score:         paper.Score,
		ProcessedDate: date.Format("2006-01-02T15:04:05"),
	}
	if paper.CitationCount != nil {
		row.CitationCount = int64Ref(*paper.CitationCount)
	}
	if paper.GitHubURL != "" {
		url := paper.GitHubURL
		row.GitHubURL = &url
	}
	if paper.GitHubStars != nil {
		row.GitHubStars = int64Ref(*paper.GitHubStars)
	}
	if paper.Summary != "" {
		summary := paper.Summary
		row.Summary = &summary
	}
	return row
}

func int64Ref(n int) *int64 {
	v := int64(n)
	return &v
}
