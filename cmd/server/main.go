package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appbilling "github.com/inventoryops/backend/internal/application/billing"
	appproc "github.com/inventoryops/backend/internal/application/procurement"
	appstock "github.com/inventoryops/backend/internal/application/stock"
	"github.com/inventoryops/backend/internal/infrastructure/config"
	"github.com/inventoryops/backend/internal/infrastructure/logger"
	"github.com/inventoryops/backend/internal/infrastructure/persistence"
	"github.com/inventoryops/backend/internal/interfaces/http/handler"
	"github.com/inventoryops/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// Repositories
	stockRepo := persistence.NewGormStockRepository(db.DB)
	stockTxRepo := persistence.NewGormStockTransactionRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	grnRepo := persistence.NewGormGoodsReceivedNoteRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	ledger := appstock.NewStockLedgerService(scope, stockRepo, stockTxRepo, log, cfg.Inventory.AllowNegativeStock)
	orderService := appproc.NewPurchaseOrderService(orderRepo, log)
	receiptService := appproc.NewGoodsReceiptService(scope, grnRepo, orderRepo, ledger, log)
	invoiceService := appbilling.NewInvoiceService(scope, invoiceRepo, warehouseRepo, ledger, log,
		cfg.Billing.DefaultTaxRate, cfg.Inventory.StrictInvoiceStock)
	paymentService := appbilling.NewPaymentService(scope, invoiceRepo, paymentRepo, log)

	engine := router.New(log, router.Handlers{
		PurchaseOrders: handler.NewPurchaseOrderHandler(orderService),
		GoodsReceipts:  handler.NewGoodsReceiptHandler(receiptService),
		Invoices:       handler.NewInvoiceHandler(invoiceService, paymentService),
		Stock:          handler.NewStockHandler(ledger),
		HealthCheck:    db.Ping,
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("server starting",
			zap.String("port", cfg.App.Port),
			zap.String("env", cfg.App.Env),
			zap.Bool("allow_negative_stock", cfg.Inventory.AllowNegativeStock),
			zap.Bool("strict_invoice_stock", cfg.Inventory.StrictInvoiceStock))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
