package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"

	"AIWeekly/internal/config"
	"AIWeekly/internal/domain"
	"AIWeekly/internal/infrastructure/email"
	"AIWeekly/internal/infrastructure/enrich"
	"AIWeekly/internal/infrastructure/feeds"
	"AIWeekly/internal/infrastructure/llm"
	"AIWeekly/internal/infrastructure/scheduler"
	"AIWeekly/internal/infrastructure/storage"
	"AIWeekly/internal/logging"
	"AIWeekly/internal/usecase"
)

// Application wires configuration to adapters and the pipeline.
type Application struct {
	cfg      *config.Config
	pipeline *usecase.Pipeline
	mailer   *email.SESMailer
	logger   *slog.Logger
}

// New loads configuration and the AWS credential chain, then wires every
// adapter into a runnable application.
func New(ctx context.Context, baseLogger *slog.Logger) (*Application, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	harvester := feeds.NewHarvester(
		baseLogger.With("component", "harvest"),
		feeds.NewArxivSource(nil, cfg.Harvest.ArxivCategories, baseLogger.With("component", "harvest.arxiv")),
		feeds.NewPapersWithCodeSource(nil),
	)

	enricher := enrich.NewEnricher(nil,
		cfg.Enrich.SemanticScholarAPIKey,
		cfg.Enrich.GitHubToken,
		cfg.Enrich.CallDelay(),
		baseLogger.With("component", "enrich"),
	)

	store := storage.NewS3Store(s3.NewFromConfig(awsCfg), cfg.Report, baseLogger.With("component", "storage"))
	mailer := email.NewSESMailer(ses.NewFromConfig(awsCfg), cfg.Email.Sender, baseLogger.With("component", "email"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:        harvester,
		Enricher:      enricher,
		Store:         store,
		Mailer:        mailer,
		NewSummarizer: llm.New,
		Config:        &cfg,
		Logger:        baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: &cfg, pipeline: pipeline, mailer: mailer, logger: baseLogger}, nil
}

// Execute performs one run end to end: configuration load, wiring and the
// pipeline pass. Bootstrap failures are shaped into the same structured
// result the pipeline itself reports, so callers always get a RunResult.
func Execute(ctx context.Context, baseLogger *slog.Logger) domain.RunResult {
	start := time.Now()

	application, err := New(ctx, baseLogger)
	if err != nil {
		logging.OrDiscard(baseLogger).Error("bootstrap failed", "error", err)
		return usecase.FailureResult(err, time.Since(start))
	}

	return application.Run(ctx, start)
}

// Run executes a single pipeline pass.
func (a *Application) Run(ctx context.Context, start time.Time) domain.RunResult {
	return a.pipeline.Run(ctx, start)
}

// RunDaemon blocks, executing the pipeline on the configured interval until
// the context is canceled.
func (a *Application) RunDaemon(ctx context.Context) error {
	a.logger.Info("starting daemon", "interval", a.cfg.Scheduler.Every().String())

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Every())
	sched := usecase.NewScheduler(driver, a.pipeline)
	if err := sched.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return sched.Stop(context.Background())
}

// CheckSES prints the SES account status: quota, sandbox mode, verified
// identities and whether the configured sender is among them.
func (a *Application) CheckSES(ctx context.Context, w io.Writer) error {
	status, err := a.mailer.CheckAccount(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "SES account status")
	if status.SandboxMode {
		fmt.Fprintln(w, "  Sandbox mode:      yes (limited to 200 emails/day)")
	} else {
		fmt.Fprintln(w, "  Sandbox mode:      no (production)")
	}
	fmt.Fprintf(w, "  Max 24-hour send:  %.0f\n", status.Max24HourSend)
	fmt.Fprintf(w, "  Max send rate:     %.1f/second\n", status.MaxSendRate)
	fmt.Fprintf(w, "  Sent last 24h:     %.0f\n", status.SentLast24Hours)

	if len(status.VerifiedEmails) == 0 {
		fmt.Fprintln(w, "  No verified email addresses; verify at least one before sending.")
	} else {
		fmt.Fprintln(w, "  Verified addresses:")
		for _, address := range status.VerifiedEmails {
			fmt.Fprintf(w, "    - %s\n", address)
		}
	}

	if a.cfg.Email.Sender != "" {
		fmt.Fprintf(w, "  Sender %s verified: %t\n", a.cfg.Email.Sender, status.SenderVerified(a.cfg.Email.Sender))
	}
	return nil
}

// VerifySES requests identity verification for an address. SES mails the
// address a confirmation link.
func (a *Application) VerifySES(ctx context.Context, address string, w io.Writer) error {
	if err := a.mailer.VerifyIdentity(ctx, address); err != nil {
		return err
	}
	fmt.Fprintf(w, "Verification email sent to %s; follow the link inside to finish.\n", address)
	return nil
}
