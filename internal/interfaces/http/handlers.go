package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pkamnerd/dorm-billing/internal/application/service"
	"github.com/pkamnerd/dorm-billing/internal/domain/billing"
	"github.com/pkamnerd/dorm-billing/internal/domain/entity"
	"github.com/pkamnerd/dorm-billing/internal/report"
	"github.com/pkamnerd/dorm-billing/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	ledgerService service.LedgerService
	reportService service.ReportService
	exporter      *report.ExcelExporter
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	ledgerService service.LedgerService,
	reportService service.ReportService,
	exporter *report.ExcelExporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		ledgerService: ledgerService,
		reportService: reportService,
		exporter:      exporter,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	UnitCount   string `json:"unit_count"`
	Rate        string `json:"rate"`
	Amount      string `json:"amount"`
	Editable    bool   `json:"editable"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID        int64  `json:"id"`
	Amount    string `json:"amount"`
	Method    string `json:"method"`
	PaidAt    string `json:"paid_at"`
	Note      string `json:"note,omitempty"`
	ReceiptNo string `json:"receipt_no"`
}

// InvoiceViewResponse represents the full invoice ledger view
type InvoiceViewResponse struct {
	ID          int64              `json:"id"`
	DormID      int64              `json:"dorm_id"`
	Room        string             `json:"room"`
	TenantName  string             `json:"tenant_name"`
	Period      string             `json:"period"`
	DueDate     string             `json:"due_date"`
	Status      string             `json:"status"`
	Items       []LineItemResponse `json:"items"`
	Payments    []PaymentResponse  `json:"payments"`
	Total       string             `json:"total"`
	Paid        string             `json:"paid"`
	Balance     string             `json:"balance"`
	LateDays    int                `json:"late_days"`
	LateFee     string             `json:"late_fee"`
	LateFeeItem *LineItemResponse  `json:"late_fee_item,omitempty"`
	AmountDue   string             `json:"amount_due"`
	CanMutate   bool               `json:"can_mutate"`
}

// RecordPaymentResponse represents the outcome of a recorded payment
type RecordPaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Balance string          `json:"balance"`
	Status  string          `json:"status"`
}

// AddItemRequest represents the body for adding a line item
type AddItemRequest struct {
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
	UnitCount   string `json:"unit_count" binding:"required"`
	Rate        string `json:"rate" binding:"required"`
}

// UpdateItemRequest represents the body for editing a line item.
// An empty description keeps the stored one.
type UpdateItemRequest struct {
	Description string `json:"description"`
	UnitCount   string `json:"unit_count" binding:"required"`
	Rate        string `json:"rate" binding:"required"`
}

// RecordPaymentRequest represents the body for recording a payment
type RecordPaymentRequest struct {
	Amount string `json:"amount" binding:"required"`
	Method string `json:"method" binding:"required"`
	PaidAt string `json:"paid_at"`
	Note   string `json:"note"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// GetInvoice handles GET /api/v1/dorms/:dormId/invoices/:invoiceId
func (h *Handlers) GetInvoice(c *gin.Context) {
	dormID, invoiceID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	view, err := h.ledgerService.GetInvoiceView(c.Request.Context(), dormID, invoiceID)
	if err != nil {
		h.respondError(c, err, "get invoice")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toInvoiceViewResponse(view),
	})
}

// DeleteInvoice handles DELETE /api/v1/dorms/:dormId/invoices/:invoiceId
func (h *Handlers) DeleteInvoice(c *gin.Context) {
	dormID, invoiceID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteInvoice(c.Request.Context(), dormID, invoiceID); err != nil {
		h.respondError(c, err, "delete invoice")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// AddItem handles POST /api/v1/dorms/:dormId/invoices/:invoiceId/items
func (h *Handlers) AddItem(c *gin.Context) {
	dormID, invoiceID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	unitCount, err := decimal.NewFromString(req.UnitCount)
	if err != nil {
		h.badRequest(c, "invalid unit_count")
		return
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		h.badRequest(c, "invalid rate")
		return
	}

	item, err := h.ledgerService.AddItem(c.Request.Context(), dormID, invoiceID, service.AddItemRequest{
		Type:        entity.ItemType(req.Type),
		Description: utils.SanitizeString(req.Description),
		UnitCount:   unitCount,
		Rate:        rate,
	})
	if err != nil {
		h.respondError(c, err, "add item")
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    toLineItemResponse(item),
	})
}

// UpdateItem handles PUT /api/v1/dorms/:dormId/invoices/:invoiceId/items/:itemId
func (h *Handlers) UpdateItem(c *gin.Context) {
	dormID, invoiceID, ok := h.pathIDs(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "itemId")
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	unitCount, err := decimal.NewFromString(req.UnitCount)
	if err != nil {
		h.badRequest(c, "invalid unit_count")
		return
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		h.badRequest(c, "invalid rate")
		return
	}

	item, err := h.ledgerService.UpdateItem(c.Request.Context(), dormID, invoiceID, itemID, service.UpdateItemRequest{
		Description: utils.SanitizeString(req.Description),
		UnitCount:   unitCount,
		Rate:        rate,
	})
	if err != nil {
		h.respondError(c, err, "update item")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toLineItemResponse(item),
	})
}

// DeleteItem handles DELETE /api/v1/dorms/:dormId/invoices/:invoiceId/items/:itemId
func (h *Handlers) DeleteItem(c *gin.Context) {
	dormID, invoiceID, ok := h.pathIDs(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "itemId")
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteItem(c.Request.Context(), dormID, invoiceID, itemID); err != nil {
		h.respondError(c, err, "delete item")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// RecordPayment handles POST /api/v1/dorms/:dormId/invoices/:invoiceId/payments
func (h *Handlers) RecordPayment(c *gin.Context) {
	dormID, invoiceID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.badRequest(c, "invalid amount")
		return
	}

	var paidAt time.Time
	if req.PaidAt != "" {
		paidAt, err = time.Parse(time.RFC3339, req.PaidAt)
		if err != nil {
			h.badRequest(c, "invalid paid_at, expected RFC3339")
			return
		}
	}

	result, err := h.ledgerService.RecordPayment(c.Request.Context(), dormID, invoiceID, service.RecordPaymentRequest{
		Amount: amount,
		Method: entity.PaymentMethod(req.Method),
		PaidAt: paidAt,
		Note:   utils.SanitizeString(req.Note),
	})
	if err != nil {
		h.respondError(c, err, "record payment")
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data: RecordPaymentResponse{
			Payment: toPaymentResponse(result.Payment),
			Balance: result.Balance.StringFixed(2),
			Status:  result.Status.String(),
		},
	})
}

// DeletePayment handles DELETE /api/v1/dorms/:dormId/invoices/:invoiceId/payments/:paymentId
func (h *Handlers) DeletePayment(c *gin.Context) {
	dormID, invoiceID, ok := h.pathIDs(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "paymentId")
	if !ok {
		return
	}

	if err := h.ledgerService.DeletePayment(c.Request.Context(), dormID, invoiceID, paymentID); err != nil {
		h.respondError(c, err, "delete payment")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// SendReminder handles POST /api/v1/dorms/:dormId/invoices/:invoiceId/reminder
func (h *Handlers) SendReminder(c *gin.Context) {
	dormID, invoiceID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	if err := h.ledgerService.SendReminder(c.Request.Context(), dormID, invoiceID); err != nil {
		h.respondError(c, err, "send reminder")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// MonthlyReport handles GET /api/v1/dorms/:dormId/reports/:period
func (h *Handlers) MonthlyReport(c *gin.Context) {
	dormID, ok := h.pathID(c, "dormId")
	if !ok {
		return
	}

	period := c.Param("period")
	if err := utils.ValidatePeriod(period); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	rep, err := h.reportService.MonthlyReport(c.Request.Context(), dormID, period)
	if err != nil {
		h.respondError(c, err, "monthly report")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    rep,
	})
}

// ExportMonthlyReport handles GET /api/v1/dorms/:dormId/reports/:period/export
func (h *Handlers) ExportMonthlyReport(c *gin.Context) {
	dormID, ok := h.pathID(c, "dormId")
	if !ok {
		return
	}

	period := c.Param("period")
	if err := utils.ValidatePeriod(period); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	rep, err := h.reportService.MonthlyReport(c.Request.Context(), dormID, period)
	if err != nil {
		h.respondError(c, err, "monthly report export")
		return
	}

	path, err := h.exporter.Export(rep)
	if err != nil {
		h.respondError(c, err, "monthly report export")
		return
	}

	c.FileAttachment(path, "ledger_"+period+".xlsx")
}

// pathIDs extracts and validates the dormId and invoiceId path parameters
func (h *Handlers) pathIDs(c *gin.Context) (dormID, invoiceID int64, ok bool) {
	dormID, ok = h.pathID(c, "dormId")
	if !ok {
		return 0, 0, false
	}
	invoiceID, ok = h.pathID(c, "invoiceId")
	if !ok {
		return 0, 0, false
	}
	return dormID, invoiceID, true
}

// pathID extracts one int64 path parameter, responding 400 on failure
func (h *Handlers) pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
	})
}

// respondError maps domain errors onto HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error, op string) {
	var validationErr *entity.ValidationError
	var transportErr *billing.TransportError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: validationErr.Error()})
	case errors.Is(err, billing.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "not found"})
	case errors.Is(err, billing.ErrAlreadySettled):
		c.JSON(http.StatusConflict, Response{Success: false, Error: "invoice is settled"})
	case errors.Is(err, billing.ErrConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: "invoice was modified concurrently, retry"})
	case errors.As(err, &transportErr):
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: transportErr.Error()})
	default:
		h.logger.Error("Request failed", "op", op, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

// toInvoiceViewResponse converts the ledger view to the API response shape
func toInvoiceViewResponse(view *service.InvoiceView) InvoiceViewResponse {
	resp := InvoiceViewResponse{
		ID:         view.Invoice.ID,
		DormID:     view.Invoice.DormID,
		Room:       view.Invoice.Room,
		TenantName: view.Invoice.TenantName,
		Period:     view.Invoice.Period,
		DueDate:    view.Invoice.DueDate.Format("2006-01-02"),
		Status:     view.Status.String(),
		Items:      []LineItemResponse{},
		Payments:   []PaymentResponse{},
		Total:      view.Total.StringFixed(2),
		Paid:       view.Paid.StringFixed(2),
		Balance:    view.Balance.StringFixed(2),
		LateDays:   view.LateDays,
		LateFee:    view.LateFee.StringFixed(2),
		AmountDue:  view.AmountDue.StringFixed(2),
		CanMutate:  view.CanMutate,
	}

	for _, item := range view.Items {
		resp.Items = append(resp.Items, toLineItemResponse(item))
	}
	for _, payment := range view.Payments {
		resp.Payments = append(resp.Payments, toPaymentResponse(payment))
	}
	if view.LateFeeItem != nil {
		feeItem := toLineItemResponse(view.LateFeeItem)
		resp.LateFeeItem = &feeItem
	}

	return resp
}

// toLineItemResponse converts a domain line item to the API response shape
func toLineItemResponse(item *entity.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:          item.ID,
		Type:        item.Type.String(),
		Description: item.Description,
		UnitCount:   item.UnitCount.String(),
		Rate:        item.Rate.String(),
		Amount:      item.Amount.StringFixed(2),
		Editable:    item.Type.UserEditable(),
	}
}

// toPaymentResponse converts a domain payment to the API response shape
func toPaymentResponse(payment *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        payment.ID,
		Amount:    payment.Amount.StringFixed(2),
		Method:    payment.Method.String(),
		PaidAt:    payment.PaidAt.Format(time.RFC3339),
		Note:      payment.Note,
		ReceiptNo: payment.ReceiptNo,
	}
}
