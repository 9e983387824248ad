package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pkamnerd/dorm-billing/internal/application/port"
	"github.com/pkamnerd/dorm-billing/internal/domain/entity"
)

func testReminder() *port.Reminder {
	return &port.Reminder{
		Invoice: &entity.Invoice{
			ID:          42,
			Room:        "A-301",
			TenantName:  "Somchai",
			TenantEmail: "somchai@example.com",
			Period:      "2026-07",
			DueDate:     time.Date(2026, time.July, 5, 0, 0, 0, 0, time.UTC),
		},
		Balance:  decimal.NewFromInt(360),
		LateDays: 10,
		LateFee:  decimal.NewFromInt(200),
	}
}

func TestSender_SendReminder(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sender := NewSender(Config{
		Host:      "smtp.example.com",
		Port:      587,
		Username:  "billing",
		Password:  "secret",
		FromName:  "Dormitory Billing",
		FromEmail: "billing@example.com",
	}, logger)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	sender.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := sender.SendReminder(context.Background(), testReminder())
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "billing@example.com", gotFrom)
	assert.Equal(t, []string{"somchai@example.com"}, gotTo)

	body := string(gotMsg)
	assert.Contains(t, body, "Subject: Payment reminder - room A-301, 2026-07")
	assert.Contains(t, body, "Outstanding balance: 360.00")
	assert.Contains(t, body, "Days overdue: 10")
	assert.Contains(t, body, "Accrued late fee: 200.00")
	assert.Contains(t, body, "Amount due including late fee: 560.00")
}

func TestSender_SendReminder_NotOverdue(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sender := NewSender(Config{Host: "smtp.example.com", Port: 587, FromEmail: "billing@example.com"}, logger)

	var gotMsg []byte
	sender.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotMsg = msg
		return nil
	}

	reminder := testReminder()
	reminder.LateDays = 0
	reminder.LateFee = decimal.Zero

	err := sender.SendReminder(context.Background(), reminder)
	require.NoError(t, err)
	assert.NotContains(t, string(gotMsg), "Days overdue")
	assert.NotContains(t, string(gotMsg), "late fee")
}

func TestSender_SendReminder_Failure(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sender := NewSender(Config{Host: "smtp.example.com", Port: 587, FromEmail: "billing@example.com"}, logger)
	sender.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	err := sender.SendReminder(context.Background(), testReminder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send reminder email")
}

func TestSender_SendReminder_NoEmail(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sender := NewSender(Config{Host: "smtp.example.com"}, logger)

	reminder := testReminder()
	reminder.Invoice.TenantEmail = ""

	err := sender.SendReminder(context.Background(), reminder)
	require.Error(t, err)
}

func TestSender_SendReminder_Disabled(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	sender := NewSender(Config{}, logger)

	var called bool
	sender.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		called = true
		return nil
	}

	err := sender.SendReminder(context.Background(), testReminder())
	require.NoError(t, err)
	assert.False(t, called, "no delivery attempt without SMTP host")
}
