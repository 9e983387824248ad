// Package email delivers overdue-invoice reminders over SMTP.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/pkamnerd/dorm-billing/internal/application/port"
)

// Config holds SMTP settings for the reminder sender
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

// Sender implements port.ReminderNotifier over SMTP. With no host
// configured it degrades to logging the reminder, which keeps local
// development working without a mail relay.
type Sender struct {
	cfg    Config
	logger *zap.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSender creates a new reminder sender
func NewSender(cfg Config, logger *zap.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send:   smtp.SendMail,
	}
}

// SendReminder composes and delivers an overdue notice for one invoice
func (s *Sender) SendReminder(ctx context.Context, reminder *port.Reminder) error {
	invoice := reminder.Invoice
	if invoice.TenantEmail == "" {
		return fmt.Errorf("invoice %d has no tenant email", invoice.ID)
	}

	subject := fmt.Sprintf("Payment reminder - room %s, %s", invoice.Room, invoice.Period)
	body := s.buildBody(reminder)

	if s.cfg.Host == "" {
		s.logger.Info("SMTP not configured, logging reminder instead",
			zap.Int64("invoice_id", invoice.ID),
			zap.String("to", invoice.TenantEmail),
			zap.String("subject", subject))
		return nil
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", s.cfg.FromName, s.cfg.FromEmail),
		fmt.Sprintf("To: %s", invoice.TenantEmail),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := s.send(addr, auth, s.cfg.FromEmail, []string{invoice.TenantEmail}, []byte(msg)); err != nil {
		s.logger.Error("Failed to send reminder email",
			zap.Int64("invoice_id", invoice.ID),
			zap.String("to", invoice.TenantEmail),
			zap.Error(err))
		return fmt.Errorf("failed to send reminder email: %w", err)
	}

	s.logger.Info("Reminder email sent",
		zap.Int64("invoice_id", invoice.ID),
		zap.String("to", invoice.TenantEmail))
	return nil
}

// buildBody composes the reminder body from the ledger figures
func (s *Sender) buildBody(reminder *port.Reminder) string {
	invoice := reminder.Invoice

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", invoice.TenantName)
	fmt.Fprintf(&b, "Our records show an outstanding balance on your invoice for room %s, billing period %s.\n\n", invoice.Room, invoice.Period)
	fmt.Fprintf(&b, "Outstanding balance: %s\n", reminder.Balance.StringFixed(2))
	fmt.Fprintf(&b, "Due date: %s\n", invoice.DueDate.Format("2006-01-02"))

	if reminder.LateDays > 0 {
		fmt.Fprintf(&b, "Days overdue: %d\n", reminder.LateDays)
		if reminder.LateFee.Sign() > 0 {
			fmt.Fprintf(&b, "Accrued late fee: %s\n", reminder.LateFee.StringFixed(2))
			fmt.Fprintf(&b, "Amount due including late fee: %s\n", reminder.Balance.Add(reminder.LateFee).StringFixed(2))
		}
	}

	b.WriteString("\nPlease settle the balance at your earliest convenience.\n")
	b.WriteString("\nThis message was sent automatically by the dormitory billing system.\n")
	return b.String()
}
