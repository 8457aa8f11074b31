package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/recuerdos/tienda/internal/catalog"
	cataldomain "github.com/recuerdos/tienda/internal/catalog/domain"
	"github.com/recuerdos/tienda/internal/config"
	"github.com/recuerdos/tienda/internal/inventory"
	"github.com/recuerdos/tienda/internal/locks"
	"github.com/recuerdos/tienda/internal/migration"
	"github.com/recuerdos/tienda/internal/observability/metrics"
	"github.com/recuerdos/tienda/internal/order"
	orderdomain "github.com/recuerdos/tienda/internal/order/domain"
	"github.com/recuerdos/tienda/internal/payment"
	paymentdomain "github.com/recuerdos/tienda/internal/payment/domain"
	"github.com/recuerdos/tienda/internal/providers/email"
	"github.com/recuerdos/tienda/internal/providers/pdf"
	"github.com/recuerdos/tienda/internal/sale"
	saledomain "github.com/recuerdos/tienda/internal/sale/domain"
	"github.com/recuerdos/tienda/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	metrics.Module,
	locks.Module,
	email.Module,
	pdf.Module,
	catalog.Module,
	order.Module,
	inventory.Module,
	sale.Module,
	payment.Module,
	migration.Module,
	seed.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	// the default gatherer carries the gorm pool stats
	gatherers := prometheus.Gatherers{m.Registry, prometheus.DefaultGatherer}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	catalogSvc cataldomain.Service
	orderSvc   orderdomain.Service
	orderRepo  orderdomain.Repository
	saleSvc    saledomain.Service
	paymentSvc paymentdomain.Service
	pdfGen     pdf.Generator
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	CatalogSvc cataldomain.Service
	OrderSvc   orderdomain.Service
	OrderRepo  orderdomain.Repository
	SaleSvc    saledomain.Service
	PaymentSvc paymentdomain.Service
	PDFGen     pdf.Generator
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		catalogSvc: p.CatalogSvc,
		orderSvc:   p.OrderSvc,
		orderRepo:  p.OrderRepo,
		saleSvc:    p.SaleSvc,
		paymentSvc: p.PaymentSvc,
		pdfGen:     p.PDFGen,
	}

	s.registerWebhookRoutes()
	s.registerStoreRoutes()
	s.registerAdminRoutes()

	return s
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/payments", s.HandlePaymentWebhook)
}

func (s *Server) registerStoreRoutes() {
	api := s.engine.Group("/api")
	api.GET("/products", s.ListProducts)
	api.GET("/products/:slug", s.GetProduct)
	api.POST("/checkout", s.Checkout)
	api.POST("/checkout/whatsapp", s.WhatsAppCheckout)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.POST("/products", s.CreateProduct)
	admin.PATCH("/products/:slug", s.UpdateProduct)
	admin.POST("/products/:slug/skus", s.AddProductSku)

	admin.GET("/orders", s.ListOrders)
	admin.GET("/orders/:id", s.GetOrder)
	admin.PUT("/orders/:id/shipment", s.SetOrderShipment)
	admin.PUT("/orders/:id/invoice", s.SetOrderInvoice)
	admin.GET("/orders/:id/invoice.pdf", s.OrderInvoicePDF)
	admin.DELETE("/orders/:id", s.DeleteOrder)

	admin.GET("/sales", s.ListSales)
	admin.POST("/sales", s.CreatePhysicalSale)

	admin.POST("/payments/resync", s.ResyncPayment)
	admin.GET("/webhook-events", s.ListWebhookEvents)
	admin.GET("/reconcile-failures", s.ListReconcileFailures)
	admin.POST("/reconcile-failures/:id/replay", s.ReplayReconcileFailure)
}
