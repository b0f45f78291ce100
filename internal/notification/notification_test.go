package notification_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomail "gopkg.in/gomail.v2"

	"github.com/ldworks/trainee-management/internal/core/events"
	"github.com/ldworks/trainee-management/internal/notification"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

var _ = Describe("Mailer", func() {
	var (
		sender *fakeSender
		mailer *notification.Mailer
		ctx    context.Context
	)

	BeforeEach(func() {
		sender = &fakeSender{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		mailer = notification.NewMailerWithSender(sender, "noreply@tams.local", logger)
		ctx = context.Background()
	})

	Describe("HandleAccessRequestApproved", func() {
		It("should mail the temporary password to the new account", func() {
			event := events.NewAccessRequestApprovedEvent(1, 100, "sari@example.com", "Sari Wulandari", "trainee", "temp-secret")

			Expect(mailer.HandleAccessRequestApproved(ctx, event)).To(Succeed())
			Expect(sender.sent).To(HaveLen(1))

			msg := sender.sent[0]
			Expect(msg.GetHeader("To")).To(ConsistOf("sari@example.com"))
			Expect(msg.GetHeader("From")).To(ConsistOf("noreply@tams.local"))
			Expect(msg.GetHeader("Subject")).To(ConsistOf("Your account is ready"))
		})

		It("should ignore events of another type", func() {
			event := events.NewAccessRequestRejectedEvent(1, "sari@example.com", "Sari Wulandari", "no")

			Expect(mailer.HandleAccessRequestApproved(ctx, event)).To(Succeed())
			Expect(sender.sent).To(BeEmpty())
		})

		It("should surface a send failure after logging it", func() {
			sender.err = errors.New("smtp unreachable")
			event := events.NewAccessRequestApprovedEvent(1, 100, "sari@example.com", "Sari Wulandari", "trainee", "temp-secret")

			Expect(mailer.HandleAccessRequestApproved(ctx, event)).NotTo(Succeed())
		})
	})

	Describe("HandleAccessRequestRejected", func() {
		It("should mail the reviewer comment to the applicant", func() {
			event := events.NewAccessRequestRejectedEvent(1, "sari@example.com", "Sari Wulandari", "role not justified")

			Expect(mailer.HandleAccessRequestRejected(ctx, event)).To(Succeed())
			Expect(sender.sent).To(HaveLen(1))
			Expect(sender.sent[0].GetHeader("Subject")).To(ConsistOf("Access request update"))
		})
	})

	Describe("HandleMentorAssigned", func() {
		It("should notify the assigned mentor", func() {
			event := events.NewMentorAssignedEvent(100, 5, "mentor@example.com", 4, "Sari Wulandari")

			Expect(mailer.HandleMentorAssigned(ctx, event)).To(Succeed())
			Expect(sender.sent).To(HaveLen(1))
			Expect(sender.sent[0].GetHeader("To")).To(ConsistOf("mentor@example.com"))
		})

		It("should skip assignments without a mentor email", func() {
			event := events.NewMentorAssignedEvent(100, 5, "", 4, "Sari Wulandari")

			Expect(mailer.HandleMentorAssigned(ctx, event)).To(Succeed())
			Expect(sender.sent).To(BeEmpty())
		})
	})

	Describe("Register", func() {
		It("should deliver published events through the bus", func() {
			bus := events.NewEventBus(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
			mailer.Register(bus)

			event := events.NewAccessRequestRejectedEvent(1, "sari@example.com", "Sari Wulandari", "no")
			Expect(bus.PublishSync(ctx, event)).To(Succeed())
			Expect(sender.sent).To(HaveLen(1))
		})
	})
})
