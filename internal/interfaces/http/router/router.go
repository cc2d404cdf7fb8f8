package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inventoryops/backend/internal/interfaces/http/handler"
	"github.com/inventoryops/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the handlers the router mounts
type Handlers struct {
	PurchaseOrders *handler.PurchaseOrderHandler
	GoodsReceipts  *handler.GoodsReceiptHandler
	Invoices       *handler.InvoiceHandler
	Stock          *handler.StockHandler
	HealthCheck    func() error
}

// New builds the gin engine with all routes mounted under /api/v1
func New(logger *zap.Logger, h Handlers) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Recovery(logger))

	engine.GET("/health", func(c *gin.Context) {
		if h.HealthCheck != nil {
			if err := h.HealthCheck(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")

	orders := api.Group("/purchase-orders")
	{
		orders.POST("", h.PurchaseOrders.Create)
		orders.GET("", h.PurchaseOrders.List)
		orders.GET("/:id", h.PurchaseOrders.Get)
		orders.PUT("/:id", h.PurchaseOrders.Update)
		orders.DELETE("/:id", h.PurchaseOrders.Delete)
		orders.POST("/:id/approve", h.PurchaseOrders.Approve)
		orders.POST("/:id/close", h.PurchaseOrders.Close)
		orders.GET("/:id/goods-receipts", h.GoodsReceipts.ListByOrder)
	}

	receipts := api.Group("/goods-receipts")
	{
		receipts.POST("", h.GoodsReceipts.Create)
		receipts.GET("/:id", h.GoodsReceipts.Get)
		receipts.PUT("/:id", h.GoodsReceipts.Update)
		receipts.POST("/:id/receive", h.GoodsReceipts.Receive)
	}

	invoices := api.Group("/invoices")
	{
		invoices.POST("", h.Invoices.Create)
		invoices.GET("", h.Invoices.List)
		invoices.GET("/:id", h.Invoices.Get)
		invoices.PUT("/:id", h.Invoices.Update)
		invoices.DELETE("/:id", h.Invoices.Delete)
		invoices.POST("/:id/mark-paid", h.Invoices.MarkAsPaid)
		invoices.POST("/:id/payments", h.Invoices.RecordPayment)
		invoices.GET("/:id/payments", h.Invoices.PaymentDetails)
	}

	stock := api.Group("/stock")
	{
		stock.POST("/movements", h.Stock.ApplyMovement)
		stock.GET("/movements", h.Stock.Movements)
		stock.GET("/balance", h.Stock.Balance)
		stock.GET("/reconcile", h.Stock.Reconcile)
		stock.GET("/warehouses/:id/balances", h.Stock.WarehouseBalances)
		stock.GET("/warehouses/:id/reconcile", h.Stock.ReconcileWarehouse)
	}

	return engine
}
