package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"

	"AIWeekly/internal/logging"
	"AIWeekly/internal/ports"
	"AIWeekly/internal/report"
)

const charset = "UTF-8"

// Sandbox accounts are capped at 200 messages per day; production accounts
// start far above that.
const sandboxDailyQuota = 200

// sesAPI is the slice of the SES API the mailer depends on.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	GetSendQuota(ctx context.Context, params *ses.GetSendQuotaInput, optFns ...func(*ses.Options)) (*ses.GetSendQuotaOutput, error)
	ListVerifiedEmailAddresses(ctx context.Context, params *ses.ListVerifiedEmailAddressesInput, optFns ...func(*ses.Options)) (*ses.ListVerifiedEmailAddressesOutput, error)
	VerifyEmailIdentity(ctx context.Context, params *ses.VerifyEmailIdentityInput, optFns ...func(*ses.Options)) (*ses.VerifyEmailIdentityOutput, error)
}

// SESMailer delivers digests as plain-text email from a single verified
// sender.
type SESMailer struct {
	client sesAPI
	sender string
	logger *slog.Logger
}

var _ ports.Mailer = (*SESMailer)(nil)

// NewSESMailer wires the SES client and the configured sender address.
func NewSESMailer(client sesAPI, sender string, log *slog.Logger) *SESMailer {
	return &SESMailer{client: client, sender: sender, logger: log}
}

// SendReport mails the report to all recipients in one call. An empty
// recipient list is a successful no-op.
func (m *SESMailer) SendReport(ctx context.Context, markdown string, recipients []string, date time.Time) (bool, error) {
	log := logging.OrDiscard(m.logger)
	if len(recipients) == 0 {
		log.Info("no recipients configured, skipping email")
		return true, nil
	}

	subject := "AI Research Weekly - " + date.Format("2006-01-02")
	body := report.PlainText(markdown)

	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(m.sender),
		Destination: &sestypes.Destination{ToAddresses: recipients},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject), Charset: aws.String(charset)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body), Charset: aws.String(charset)},
			},
		},
	})
	if err != nil {
		return false, fmt.Errorf("send email: %w", err)
	}

	log.Info("email sent", "message_id", aws.ToString(out.MessageId), "recipients", len(recipients))
	return true, nil
}

// AccountStatus summarizes the SES account state for operational checks.
type AccountStatus struct {
	Max24HourSend   float64
	MaxSendRate     float64
	SentLast24Hours float64
	SandboxMode     bool
	VerifiedEmails  []string
}

// SenderVerified reports whether the address is in the verified identity set.
func (s AccountStatus) SenderVerified(sender string) bool {
	for _, address := range s.VerifiedEmails {
		if strings.EqualFold(address, sender) {
			return true
		}
	}
	return false
}

// CheckAccount reads the sending quota and verified identities. Sandbox mode
// is inferred from the daily quota.
func (m *SESMailer) CheckAccount(ctx context.Context) (AccountStatus, error) {
	quota, err := m.client.GetSendQuota(ctx, &ses.GetSendQuotaInput{})
	if err != nil {
		return AccountStatus{}, fmt.Errorf("get send quota: %w", err)
	}

	verified, err := m.client.ListVerifiedEmailAddresses(ctx, &ses.ListVerifiedEmailAddressesInput{})
	if err != nil {
		return AccountStatus{}, fmt.Errorf("list verified addresses: %w", err)
	}

	return AccountStatus{
		Max24HourSend:   quota.Max24HourSend,
		MaxSendRate:     quota.MaxSendRate,
		SentLast24Hours: quota.SentLast24Hours,
		SandboxMode:     quota.Max24HourSend <= sandboxDailyQuota,
		VerifiedEmails:  verified.VerifiedEmailAddresses,
	}, nil
}

// VerifyIdentity asks SES to start verification for an address. SES mails a
// confirmation link to the address.
func (m *SESMailer) VerifyIdentity(ctx context.Context, address string) error {
	_, err := m.client.VerifyEmailIdentity(ctx, &ses.VerifyEmailIdentityInput{
		EmailAddress: aws.String(address),
	})
	if err != nil {
		return fmt.Errorf("verify email identity: %w", err)
	}
	return nil
}
