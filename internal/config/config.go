package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	defaultInterval = 168 * time.Hour
	defaultDelay    = 100 * time.Millisecond

	configPathEnv         = "AI_WEEKLY_CONFIG"
	reportBucketEnv       = "REPORT_BUCKET"
	llmBackendEnv         = "LLM_BACKEND"
	llmModelEnv           = "LLM_MODEL"
	openAIKeyEnv          = "OPENAI_API_KEY"
	anthropicKeyEnv       = "ANTHROPIC_API_KEY"
	semanticScholarKeyEnv = "SEMANTIC_SCHOLAR_API_KEY"
	githubTokenEnv        = "GITHUB_TOKEN"
	sesSenderEnv          = "SES_SENDER"
	subscribersEnv        = "SUBSCRIBERS"
	daysLookbackEnv       = "DAYS_LOOKBACK"
	topKEnv               = "TOP_K_PAPERS"
	secretNameEnv         = "SECRET_NAME"
	logLevelEnv           = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Report    ReportConfig    `yaml:"report"`
	Harvest   HarvestConfig   `yaml:"harvest"`
	Enrich    EnrichConfig    `yaml:"enrich"`
	Ranking   RankingConfig   `yaml:"ranking"`
	LLM       LLMConfig       `yaml:"llm"`
	Email     EmailConfig     `yaml:"email"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ReportConfig describes the S3 destination for generated reports.
type ReportConfig struct {
	Bucket        string `yaml:"bucket"`
	LatestPrefix  string `yaml:"latestPrefix"`
	ReportsPrefix string `yaml:"reportsPrefix"`
	HistoryPrefix string `yaml:"historyPrefix"`
}

// HarvestConfig controls which feeds are queried and how far back.
type HarvestConfig struct {
	ArxivCategories []string `yaml:"arxivCategories"`
	DaysLookback    int      `yaml:"daysLookback"`
}

// EnrichConfig carries credentials and pacing for the metadata APIs.
type EnrichConfig struct {
	SemanticScholarAPIKey string `yaml:"semanticScholarApiKey"`
	GitHubToken           string `yaml:"githubToken"`
	Delay                 string `yaml:"delay"`
}

// CallDelay resolves the minimum spacing between outbound enrichment calls.
func (e EnrichConfig) CallDelay() time.Duration {
	if e.Delay == "" {
		return defaultDelay
	}
	d, err := time.ParseDuration(e.Delay)
	if err != nil || d <= 0 {
		return defaultDelay
	}
	return d
}

// RankingConfig holds the scoring weights and result cap.
type RankingConfig struct {
	TopK           int     `yaml:"topK"`
	CitationWeight float64 `yaml:"citationWeight"`
	GitHubWeight   float64 `yaml:"githubWeight"`
	SocialWeight   float64 `yaml:"socialWeight"`
}

// LLMConfig defines which summarization backend to use and its credentials.
type LLMConfig struct {
	Backend      string `yaml:"backend"`
	Model        string `yaml:"model"`
	OpenAIKey    string `yaml:"openaiApiKey"`
	AnthropicKey string `yaml:"anthropicApiKey"`
}

// EmailConfig wires the SES sender and its recipient list.
type EmailConfig struct {
	Sender      string   `yaml:"sender"`
	Subscribers []string `yaml:"subscribers"`
}

// SchedulerConfig defines how often the daemon mode re-runs the pipeline.
type SchedulerConfig struct {
	Interval string         `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Every resolves the daemon re-run interval, defaulting to weekly.
func (s SchedulerConfig) Every() time.Duration {
	if s.Interval == "" {
		return defaultInterval
	}
	d, err := time.ParseDuration(s.Interval)
	if err != nil || d <= 0 {
		return defaultInterval
	}
	return d
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig selects the minimum log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present), applies environment overrides,
// then resolves API keys. With SECRET_NAME set the four keys come exclusively
// from Secrets Manager: a key absent from the secret stays unset, and a failed
// fetch is logged and leaves all of them unset. Environment keys apply only
// when no secret name is configured.
func Load(ctx context.Context) (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if name := os.Getenv(secretNameEnv); name != "" {
		values, err := fetchSecrets(ctx, name)
		if err != nil {
			log.Printf("config: cannot load secret %s: %v (API keys stay unset)", name, err)
		}
		cfg.applySecretKeys(values)
	} else {
		cfg.applyEnvKeys()
	}

	cfg.bindTimezone()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(reportBucketEnv); v != "" {
		c.Report.Bucket = v
	}

	if v := os.Getenv(llmBackendEnv); v != "" {
		c.LLM.Backend = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(sesSenderEnv); v != "" {
		c.Email.Sender = v
	}
	if v := os.Getenv(subscribersEnv); v != "" {
		c.Email.Subscribers = splitList(v)
	}

	if v := os.Getenv(daysLookbackEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Harvest.DaysLookback = n
		} else {
			log.Printf("config: invalid %s=%q, keeping %d", daysLookbackEnv, v, c.Harvest.DaysLookback)
		}
	}
	if v := os.Getenv(topKEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Ranking.TopK = n
		} else {
			log.Printf("config: invalid %s=%q, keeping %d", topKEnv, v, c.Ranking.TopK)
		}
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

// applyEnvKeys reads the four API credentials from the environment. Used only
// when no secret store is configured.
func (c *Config) applyEnvKeys() {
	if v := os.Getenv(openAIKeyEnv); v != "" {
		c.LLM.OpenAIKey = v
	}
	if v := os.Getenv(anthropicKeyEnv); v != "" {
		c.LLM.AnthropicKey = v
	}
	if v := os.Getenv(semanticScholarKeyEnv); v != "" {
		c.Enrich.SemanticScholarAPIKey = v
	}
	if v := os.Getenv(githubTokenEnv); v != "" {
		c.Enrich.GitHubToken = v
	}
}

// applySecretKeys makes the secret payload the sole source of the four API
// credentials. A nil map (failed fetch) or a missing entry leaves the key
// unset; environment and file values do not apply on this path.
func (c *Config) applySecretKeys(values map[string]string) {
	c.LLM.OpenAIKey = values[openAIKeyEnv]
	c.LLM.AnthropicKey = values[anthropicKeyEnv]
	c.Enrich.SemanticScholarAPIKey = values[semanticScholarKeyEnv]
	c.Enrich.GitHubToken = values[githubTokenEnv]
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func (c Config) validate() error {
	if c.Report.Bucket == "" {
		return errors.New("REPORT_BUCKET environment variable is required")
	}
	return nil
}

func fetchSecrets(ctx context.Context, name string) (map[string]string, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := secretsmanager.NewFromConfig(awsCfg)
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &name})
	if err != nil {
		return nil, fmt.Errorf("get secret value: %w", err)
	}
	if out.SecretString == nil {
		return nil, errors.New("secret has no string payload")
	}
	return parseSecretPayload([]byte(*out.SecretString))
}

func parseSecretPayload(raw []byte) (map[string]string, error) {
	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode secret payload: %w", err)
	}
	return values, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func mergeConfig(base, override Config) Config {
	if override.Report.Bucket != "" {
		base.Report.Bucket = override.Report.Bucket
	}
	if override.Report.LatestPrefix != "" {
		base.Report.LatestPrefix = override.Report.LatestPrefix
	}
	if override.Report.ReportsPrefix != "" {
		base.Report.ReportsPrefix = override.Report.ReportsPrefix
	}
	if override.Report.HistoryPrefix != "" {
		base.Report.HistoryPrefix = override.Report.HistoryPrefix
	}

	if len(override.Harvest.ArxivCategories) > 0 {
		base.Harvest.ArxivCategories = override.Harvest.ArxivCategories
	}
	if override.Harvest.DaysLookback > 0 {
		base.Harvest.DaysLookback = override.Harvest.DaysLookback
	}

	if override.Enrich.SemanticScholarAPIKey != "" {
		base.Enrich.SemanticScholarAPIKey = override.Enrich.SemanticScholarAPIKey
	}
	if override.Enrich.GitHubToken != "" {
		base.Enrich.GitHubToken = override.Enrich.GitHubToken
	}
	if override.Enrich.Delay != "" {
		base.Enrich.Delay = override.Enrich.Delay
	}

	if override.Ranking.TopK > 0 {
		base.Ranking.TopK = override.Ranking.TopK
	}
	if override.Ranking.CitationWeight > 0 {
		base.Ranking.CitationWeight = override.Ranking.CitationWeight
	}
	if override.Ranking.GitHubWeight > 0 {
		base.Ranking.GitHubWeight = override.Ranking.GitHubWeight
	}
	if override.Ranking.SocialWeight > 0 {
		base.Ranking.SocialWeight = override.Ranking.SocialWeight
	}

	if override.LLM.Backend != "" {
		base.LLM.Backend = override.LLM.Backend
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.OpenAIKey != "" {
		base.LLM.OpenAIKey = override.LLM.OpenAIKey
	}
	if override.LLM.AnthropicKey != "" {
		base.LLM.AnthropicKey = override.LLM.AnthropicKey
	}

	if override.Email.Sender != "" {
		base.Email.Sender = override.Email.Sender
	}
	if len(override.Email.Subscribers) > 0 {
		base.Email.Subscribers = override.Email.Subscribers
	}

	if override.Scheduler.Interval != "" {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Report: ReportConfig{
			LatestPrefix:  "latest/",
			ReportsPrefix: "reports/",
			HistoryPrefix: "history/",
		},
		Harvest: HarvestConfig{
			ArxivCategories: []string{"cs.AI", "cs.LG", "cs.CL", "cs.CV"},
			DaysLookback:    7,
		},
		Ranking: RankingConfig{
			TopK:           10,
			CitationWeight: 0.5,
			GitHubWeight:   0.3,
			SocialWeight:   0.2,
		},
		LLM: LLMConfig{
			Backend: "openai",
			Model:   "gpt-4o-mini",
		},
		Scheduler: SchedulerConfig{
			Interval: "168h",
			Timezone: defaultTimezone,
			location: tz,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
