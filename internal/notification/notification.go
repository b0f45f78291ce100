package notification

import (
	"context"
	"fmt"
	"log/slog"

	gomail "gopkg.in/gomail.v2"

	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/core/events"
)

// Sender abstracts the SMTP dialer so tests can capture outgoing mail.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends the transactional mails triggered by domain events. Failures
// are logged and dropped; notification must never fail a workflow.
type Mailer struct {
	sender Sender
	from   string
	logger *slog.Logger
}

func NewMailer(cfg internal.NotificationConfig, logger *slog.Logger) *Mailer {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	return &Mailer{
		sender: dialer,
		from:   cfg.FromAddress,
		logger: logger,
	}
}

// NewMailerWithSender wires a custom sender, used by tests.
func NewMailerWithSender(sender Sender, from string, logger *slog.Logger) *Mailer {
	return &Mailer{
		sender: sender,
		from:   from,
		logger: logger,
	}
}

// Register subscribes the mailer to the events it cares about.
func (m *Mailer) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeAccessRequestApproved, m.HandleAccessRequestApproved)
	bus.Subscribe(events.EventTypeAccessRequestRejected, m.HandleAccessRequestRejected)
	bus.Subscribe(events.EventTypeMentorAssigned, m.HandleMentorAssigned)
}

func (m *Mailer) HandleAccessRequestApproved(ctx context.Context, event events.Event) error {
	approved, ok := event.(*events.AccessRequestApprovedEvent)
	if !ok {
		return nil
	}

	body := fmt.Sprintf(
		"Hello %s,\n\nYour account has been approved with the %s role.\n\nTemporary password: %s\nPlease change it after your first login.\n",
		approved.Name, approved.Role, approved.TempPassword)

	return m.send(approved.Email, "Your account is ready", body)
}

func (m *Mailer) HandleAccessRequestRejected(ctx context.Context, event events.Event) error {
	rejected, ok := event.(*events.AccessRequestRejectedEvent)
	if !ok {
		return nil
	}

	body := fmt.Sprintf(
		"Hello %s,\n\nYour access request was not approved.\n\nReviewer comment: %s\n",
		rejected.Name, rejected.Comment)

	return m.send(rejected.Email, "Access request update", body)
}

func (m *Mailer) HandleMentorAssigned(ctx context.Context, event events.Event) error {
	assigned, ok := event.(*events.MentorAssignedEvent)
	if !ok {
		return nil
	}
	if assigned.MentorEmail == "" {
		return nil
	}

	body := fmt.Sprintf(
		"You have been assigned as mentor for the internship of %s.\n\nPlease acknowledge the assignment to let the internship start.\n",
		assigned.TraineeName)

	return m.send(assigned.MentorEmail, "New mentor assignment", body)
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.sender.DialAndSend(msg); err != nil {
		m.logger.Error("failed to send notification mail", "error", err, "to", to, "subject", subject)
		return err
	}

	m.logger.Info("notification mail sent", "to", to, "subject", subject)
	return nil
}
