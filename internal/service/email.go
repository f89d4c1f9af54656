package service

import (
	"context"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Notifier is the outbound-email seam. Services call it on a best-effort
// basis: implementations must never block or fail the triggering mutation,
// which is why none of the methods return an error.
type Notifier interface {
	SendWelcome(email, name string)
	SendRequestReceived(ownerEmail, ownerName, donationTitle, requesterName string)
	SendRequestDecision(requesterEmail, requesterName, donationTitle, state string)
}

// EmailService sends transactional email through Resend.
//
// Every send runs in its own goroutine; failures are logged and dropped.
// In dev mode (or with no API key) the send is logged instead of delivered,
// so local work never needs provider credentials.
type EmailService struct {
	client *resend.Client
	from   string
	isDev  bool
	logger *slog.Logger
}

var _ Notifier = (*EmailService)(nil)

// NewEmailService creates an EmailService. With an empty apiKey or in dev
// mode the service only logs.
func NewEmailService(apiKey, from string, isDev bool, logger *slog.Logger) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client: client,
		from:   from,
		isDev:  isDev,
		logger: logger,
	}
}

// SendWelcome greets a newly registered (or OAuth-provisioned) account.
func (s *EmailService) SendWelcome(email, name string) {
	subject, body := welcomeTemplate(name)
	s.send("welcome", email, subject, body)
}

// SendRequestReceived tells a donation owner someone wants their item.
func (s *EmailService) SendRequestReceived(ownerEmail, ownerName, donationTitle, requesterName string) {
	subject, body := requestReceivedTemplate(ownerName, donationTitle, requesterName)
	s.send("request_received", ownerEmail, subject, body)
}

// SendRequestDecision tells a requester their request was approved or
// rejected.
func (s *EmailService) SendRequestDecision(requesterEmail, requesterName, donationTitle, state string) {
	subject, body := requestDecisionTemplate(requesterName, donationTitle, state)
	s.send("request_decision", requesterEmail, subject, body)
}

// send delivers asynchronously. The goroutine owns the error: it is logged
// here and never reaches the caller.
func (s *EmailService) send(kind, to, subject, body string) {
	if s.isDev || s.client == nil {
		s.logger.Info("email sent (dev mode)",
			slog.String("type", kind),
			slog.String("to", to),
			slog.String("subject", subject),
		)
		return
	}

	go func() {
		params := &resend.SendEmailRequest{
			From:    s.from,
			To:      []string{to},
			Subject: subject,
			Text:    body,
		}
		if _, err := s.client.Emails.SendWithContext(context.Background(), params); err != nil {
			s.logger.Error("email send failed",
				slog.String("type", kind),
				slog.String("to", to),
				slog.String("error", err.Error()),
			)
			return
		}
		s.logger.Info("email sent", slog.String("type", kind), slog.String("to", to))
	}()
}

// noopNotifier satisfies Notifier and does nothing. Used in tests and as a
// default when no notifier is wired.
type noopNotifier struct{}

func (noopNotifier) SendWelcome(string, string)                         {}
func (noopNotifier) SendRequestReceived(string, string, string, string) {}
func (noopNotifier) SendRequestDecision(string, string, string, string) {}

// NopNotifier returns a Notifier that discards everything.
func NopNotifier() Notifier { return noopNotifier{} }
