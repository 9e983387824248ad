package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pkamnerd/dorm-billing/internal/application/service"
	"github.com/pkamnerd/dorm-billing/internal/domain/billing"
	"github.com/pkamnerd/dorm-billing/internal/domain/entity"
	"github.com/pkamnerd/dorm-billing/internal/domain/lifecycle"
	"github.com/pkamnerd/dorm-billing/internal/report"
)

type mockLedgerService struct {
	getInvoiceViewFunc func(ctx context.Context, dormID, invoiceID int64) (*service.InvoiceView, error)
	addItemFunc        func(ctx context.Context, dormID, invoiceID int64, req service.AddItemRequest) (*entity.LineItem, error)
	recordPaymentFunc  func(ctx context.Context, dormID, invoiceID int64, req service.RecordPaymentRequest) (*service.PaymentResult, error)
	deletePaymentFunc  func(ctx context.Context, dormID, invoiceID, paymentID int64) error
	sendReminderFunc   func(ctx context.Context, dormID, invoiceID int64) error
}

func (m *mockLedgerService) GetInvoiceView(ctx context.Context, dormID, invoiceID int64) (*service.InvoiceView, error) {
	if m.getInvoiceViewFunc != nil {
		return m.getInvoiceViewFunc(ctx, dormID, invoiceID)
	}
	return sampleView(), nil
}

func (m *mockLedgerService) CanMutate(ctx context.Context, dormID, invoiceID int64) (bool, error) {
	return true, nil
}

func (m *mockLedgerService) AddItem(ctx context.Context, dormID, invoiceID int64, req service.AddItemRequest) (*entity.LineItem, error) {
	if m.addItemFunc != nil {
		return m.addItemFunc(ctx, dormID, invoiceID, req)
	}
	item, err := entity.NewLineItem(invoiceID, req.Type, req.Description, req.UnitCount, req.Rate)
	if err != nil {
		return nil, err
	}
	item.ID = 101
	return item, nil
}

func (m *mockLedgerService) UpdateItem(ctx context.Context, dormID, invoiceID, itemID int64, req service.UpdateItemRequest) (*entity.LineItem, error) {
	return nil, billing.ErrNotFound
}

func (m *mockLedgerService) DeleteItem(ctx context.Context, dormID, invoiceID, itemID int64) error {
	return nil
}

func (m *mockLedgerService) RecordPayment(ctx context.Context, dormID, invoiceID int64, req service.RecordPaymentRequest) (*service.PaymentResult, error) {
	if m.recordPaymentFunc != nil {
		return m.recordPaymentFunc(ctx, dormID, invoiceID, req)
	}
	payment, err := entity.NewPayment(invoiceID, req.Amount, req.Method, req.PaidAt, req.Note)
	if err != nil {
		return nil, err
	}
	payment.ID = 201
	payment.ReceiptNo = "RCP-202607-AABBCCDD"
	return &service.PaymentResult{
		Payment: payment,
		Balance: decimal.Zero,
		Status:  lifecycle.StateSettled,
	}, nil
}

func (m *mockLedgerService) DeletePayment(ctx context.Context, dormID, invoiceID, paymentID int64) error {
	if m.deletePaymentFunc != nil {
		return m.deletePaymentFunc(ctx, dormID, invoiceID, paymentID)
	}
	return nil
}

func (m *mockLedgerService) DeleteInvoice(ctx context.Context, dormID, invoiceID int64) error {
	return nil
}

func (m *mockLedgerService) SendReminder(ctx context.Context, dormID, invoiceID int64) error {
	if m.sendReminderFunc != nil {
		return m.sendReminderFunc(ctx, dormID, invoiceID)
	}
	return nil
}

type mockReportService struct{}

func (m *mockReportService) MonthlyReport(ctx context.Context, dormID int64, period string) (*service.MonthlyReport, error) {
	return &service.MonthlyReport{
		DormID:           dormID,
		Period:           period,
		TotalBilled:      decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}, nil
}

type nopLogger struct{}

func (l *nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Error(msg string, keysAndValues ...interface{}) {}

func sampleView() *service.InvoiceView {
	due := time.Date(2026, time.July, 5, 0, 0, 0, 0, time.UTC)
	item, _ := entity.NewLineItem(42, entity.ItemTypeRent, "rent",
		decimal.NewFromInt(1), decimal.NewFromInt(3000))
	item.ID = 1

	return &service.InvoiceView{
		Invoice: &entity.Invoice{
			ID:         42,
			DormID:     7,
			Room:       "A-301",
			TenantName: "Somchai",
			Period:     "2026-07",
			DueDate:    due,
			Version:    1,
		},
		Items:     []*entity.LineItem{item},
		Payments:  []*entity.Payment{},
		Total:     decimal.NewFromInt(3000),
		Paid:      decimal.Zero,
		Balance:   decimal.NewFromInt(3000),
		Status:    lifecycle.StateUnsettled,
		AmountDue: decimal.NewFromInt(3000),
		CanMutate: true,
	}
}

func newTestServer(t *testing.T, ledger service.LedgerService) *Server {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	exporter := report.NewExcelExporter(t.TempDir(), logger)
	return NewServer(DefaultServerConfig(), ledger, &mockReportService{}, exporter, &nopLogger{})
}

func doRequest(t *testing.T, srv *Server, method, path, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var resp Response
	if strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, &mockLedgerService{})

	w, resp := doRequest(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestGetInvoice(t *testing.T) {
	srv := newTestServer(t, &mockLedgerService{})

	w, resp := doRequest(t, srv, http.MethodGet, "/api/v1/dorms/7/invoices/42", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var view InvoiceViewResponse
	require.NoError(t, json.Unmarshal(data, &view))

	assert.Equal(t, int64(42), view.ID)
	assert.Equal(t, "3000.00", view.Total)
	assert.Equal(t, "3000.00", view.Balance)
	assert.Equal(t, "UNSETTLED", view.Status)
	assert.True(t, view.CanMutate)
	require.Len(t, view.Items, 1)
	assert.False(t, view.Items[0].Editable)
}

func TestGetInvoice_NotFound(t *testing.T) {
	srv := newTestServer(t, &mockLedgerService{
		getInvoiceViewFunc: func(ctx context.Context, dormID, invoiceID int64) (*service.InvoiceView, error) {
			return nil, billing.ErrNotFound
		},
	})

	w, resp := doRequest(t, srv, http.MethodGet, "/api/v1/dorms/7/invoices/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
}

func TestGetInvoice_InvalidID(t *testing.T) {
	srv := newTestServer(t, &mockLedgerService{})

	w, _ := doRequest(t, srv, http.MethodGet, "/api/v1/dorms/abc/invoices/42", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, srv, http.MethodGet, "/api/v1/dorms/7/invoices/-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddItem(t *testing.T) {
	srv := newTestServer(t, &mockLedgerService{})

	body := `{"type":"service","description":"key replacement","unit_count":"1","rate":"250"}`
	w, resp := doRequest(t, srv, http.MethodPost, "/api/v1/dorms/7/invoices/42/items", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)
}

func TestAddItem_BadBody(t *testing.T) {
	srv := newTestServer(t, &mockLedgerService{})

	w, _ := doRequest(t, srv, http.MethodPost, "/api/v1/dorms/7/invoices/42/items", `{"type":"service"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, srv, http.MethodPost, "/api/v1/dorms/7/invoices/42/items",
		`{"type":"service","unit_count":"one","rate":"250"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddItem_Settled(t *testing.T) {
	srv := newTestServer(t, &mockLedgerService{
		addItemFunc: func(ctx context.Context, dormID, invoiceID int64, req service.AddItemRequest) (*entity.LineItem, error) {
			return nil, billing.ErrAlreadySettled
		},
	})

	body := `{"type":"service","unit_count":"1","rate":"250"}`
	w, resp := doRequest(t, srv, http.MethodPost, "/api/v1/dorms/7/invoices/42/items", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, resp.Success)
}

func TestRecordPayment(t *testing.T) {
	srv := newTestServer(t, &mockLedgerService{})

	body := `{"amount":"3000","method":"transfer"}`
	w, resp := doRequest(t, srv, http.MethodPost, "/api/v1/dorms/7/invoices/42/payments", body)
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result RecordPaymentResponse
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, "0.00", result.Balance)
	assert.Equal(t, "SETTLED", result.Status)
	assert.Equal(t, "RCP-202607-AABBCCDD", result.Payment.ReceiptNo)
}

func TestRecordPayment_Conflict(t *testing.T) {
	srv := newTestServer(t, &mockLedgerService{
		recordPaymentFunc: func(ctx context.Context, dormID, invoiceID int64, req service.RecordPaymentRequest) (*service.PaymentResult, error) {
			return nil, billing.ErrConflict
		},
	})

	body := `{"amount":"3000","method":"transfer"}`
	w, _ := doRequest(t, srv, http.MethodPost, "/api/v1/dorms/7/invoices/42/payments", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRecordPayment_ValidationError(t *testing.T) {
	srv := newTestServer(t, &mockLedgerService{
		recordPaymentFunc: func(ctx context.Context, dormID, invoiceID int64, req service.RecordPaymentRequest) (*service.PaymentResult, error) {
			return nil, &entity.ValidationError{Field: "amount", Message: "payment amount must be greater than zero"}
		},
	})

	body := `{"amount":"0","method":"transfer"}`
	w, resp := doRequest(t, srv, http.MethodPost, "/api/v1/dorms/7/invoices/42/payments", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Error, "amount")
}

func TestSendReminder_TransportError(t *testing.T) {
	srv := newTestServer(t, &mockLedgerService{
		sendReminderFunc: func(ctx context.Context, dormID, invoiceID int64) error {
			return &billing.TransportError{Op: "send reminder", Err: errors.New("smtp timeout")}
		},
	})

	w, resp := doRequest(t, srv, http.MethodPost, "/api/v1/dorms/7/invoices/42/reminder", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, resp.Error, "transport failure")
}

func TestMonthlyReport_InvalidPeriod(t *testing.T) {
	srv := newTestServer(t, &mockLedgerService{})

	w, _ := doRequest(t, srv, http.MethodGet, "/api/v1/dorms/7/reports/2026-13", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, srv, http.MethodGet, "/api/v1/dorms/7/reports/2026-07", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
