package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/pkamnerd/dorm-billing/internal/application/dispatcher"
	"github.com/pkamnerd/dorm-billing/internal/application/service"
	"github.com/pkamnerd/dorm-billing/internal/config"
	"github.com/pkamnerd/dorm-billing/internal/domain/event"
	"github.com/pkamnerd/dorm-billing/internal/email"
	httpadapter "github.com/pkamnerd/dorm-billing/internal/interfaces/http"
	"github.com/pkamnerd/dorm-billing/internal/report"
	"github.com/pkamnerd/dorm-billing/internal/repository"
	"github.com/pkamnerd/dorm-billing/pkg/database"
	"github.com/pkamnerd/dorm-billing/pkg/utils"
)

func main() {
	// Load .env if present, then configuration
	gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Dormitory Billing System",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	kv := utils.NewZapKV(logger)

	// Initialize repositories
	invoiceRepo := repository.NewInvoiceRepository(db.DB, logger)
	itemRepo := repository.NewLineItemRepository(db.DB, logger)
	paymentRepo := repository.NewPaymentRepository(db.DB, logger)
	dormRepo := repository.NewDormitoryRepository(db.DB, logger)

	// Initialize event dispatcher and audit subscribers
	events := dispatcher.New(kv)
	defer events.Close()
	subscribeAuditHandlers(events, kv)

	// Initialize reminder sender
	sender := email.NewSender(email.Config{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.Username,
		Password:  cfg.Email.Password,
		FromName:  cfg.Email.FromName,
		FromEmail: cfg.Email.FromEmail,
	}, logger)

	// Initialize services
	ledgerService := service.NewLedgerService(
		invoiceRepo,
		itemRepo,
		paymentRepo,
		dormRepo,
		db,
		sender,
		events,
		kv,
	)
	reportService := service.NewReportService(invoiceRepo, ledgerService, kv)
	exporter := report.NewExcelExporter(cfg.Report.OutputDir, logger)

	// Initialize HTTP server
	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, ledgerService, reportService, exporter, kv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// subscribeAuditHandlers logs every ledger event for the audit trail
func subscribeAuditHandlers(events dispatcher.Dispatcher, logger *utils.ZapKV) {
	audit := func(ctx context.Context, evt *event.Event) error {
		logger.Info("Ledger event",
			"event_id", evt.ID,
			"type", evt.Type,
			"dorm_id", evt.DormID,
			"invoice_id", evt.InvoiceID,
			"correlation_id", evt.CorrelationID)
		return nil
	}

	for _, t := range []event.Type{
		event.TypePaymentRecorded,
		event.TypePaymentDeleted,
		event.TypeItemChanged,
		event.TypeInvoiceSettled,
		event.TypeInvoiceReopened,
		event.TypeInvoiceDeleted,
		event.TypeReminderSent,
	} {
		events.Subscribe(t, "audit-log", audit)
	}
}
