package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/pkamnerd/dorm-billing/internal/application/port"
	"github.com/pkamnerd/dorm-billing/internal/domain/entity"
	"github.com/pkamnerd/dorm-billing/internal/domain/lifecycle"
)

// ReportRow is one invoice line in the monthly ledger report
type ReportRow struct {
	Invoice  *entity.Invoice `json:"invoice"`
	Total    decimal.Decimal `json:"total"`
	Paid     decimal.Decimal `json:"paid"`
	Balance  decimal.Decimal `json:"balance"`
	LateDays int             `json:"late_days"`
	LateFee  decimal.Decimal `json:"late_fee"`
	Status   lifecycle.State `json:"status"`
}

// MonthlyReport aggregates all invoices of a dormitory for one period
type MonthlyReport struct {
	DormID           int64           `json:"dorm_id"`
	Period           string          `json:"period"`
	Rows             []*ReportRow    `json:"rows"`
	TotalBilled      decimal.Decimal `json:"total_billed"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	SettledCount     int             `json:"settled_count"`
	UnsettledCount   int             `json:"unsettled_count"`
}

// ReportService builds the monthly invoice ledger per dormitory. Figures
// come from the ledger's invoice views, never from stored status columns.
type ReportService interface {
	MonthlyReport(ctx context.Context, dormID int64, period string) (*MonthlyReport, error)
}

type reportServiceImpl struct {
	invoiceRepo port.InvoiceRepository
	ledger      LedgerService
	logger      Logger
}

// NewReportService creates a new ReportService
func NewReportService(invoiceRepo port.InvoiceRepository, ledger LedgerService, logger Logger) ReportService {
	return &reportServiceImpl{
		invoiceRepo: invoiceRepo,
		ledger:      ledger,
		logger:      logger,
	}
}

// MonthlyReport builds the ledger for one dormitory and billing month
func (s *reportServiceImpl) MonthlyReport(ctx context.Context, dormID int64, period string) (*MonthlyReport, error) {
	invoices, err := s.invoiceRepo.ListByPeriod(ctx, dormID, period)
	if err != nil {
		s.logger.Error("Failed to list invoices for report", "error", err, "dorm_id", dormID, "period", period)
		return nil, err
	}

	report := &MonthlyReport{
		DormID:           dormID,
		Period:           period,
		TotalBilled:      decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}

	for _, invoice := range invoices {
		view, err := s.ledger.GetInvoiceView(ctx, dormID, invoice.ID)
		if err != nil {
			return nil, err
		}

		row := &ReportRow{
			Invoice:  view.Invoice,
			Total:    view.Total,
			Paid:     view.Paid,
			Balance:  view.Balance,
			LateDays: view.LateDays,
			LateFee:  view.LateFee,
			Status:   view.Status,
		}
		report.Rows = append(report.Rows, row)

		report.TotalBilled = report.TotalBilled.Add(view.Total)
		report.TotalPaid = report.TotalPaid.Add(view.Paid)
		if view.Balance.Sign() > 0 {
			report.TotalOutstanding = report.TotalOutstanding.Add(view.Balance)
		}
		if view.Status == lifecycle.StateSettled {
			report.SettledCount++
		} else {
			report.UnsettledCount++
		}
	}

	s.logger.Info("Monthly report built",
		"dorm_id", dormID,
		"period", period,
		"invoice_count", len(report.Rows))
	return report, nil
}
