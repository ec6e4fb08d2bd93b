package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/authz"
	"github.com/mamadbah2/franchise/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Roster    *handlers.RosterHandler
	Finance   *handlers.FinanceHandler
	PayoutRun *handlers.PayoutRunHandler
	Messaging *handlers.MessagingHandler
	Reports   *handlers.ReportHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, a Authorizer, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(tenantMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	if h.Roster != nil {
		h.Roster.Register(api.Group("", authorize(a, authz.ObjectRoster, logger)))
	}
	if h.Finance != nil {
		h.Finance.Register(api.Group("", authorize(a, authz.ObjectFinance, logger)))
	}
	if h.PayoutRun != nil {
		h.PayoutRun.Register(api.Group("/payout-runs", authorize(a, authz.ObjectPayouts, logger)))
	}
	if h.Messaging != nil {
		h.Messaging.Register(api.Group("/whatsapp", authorize(a, authz.ObjectMessaging, logger)))
		h.Messaging.RegisterSettings(api.Group("/settings", authorize(a, authz.ObjectSettings, logger)))
	}
	if h.Reports != nil {
		h.Reports.Register(api.Group("/reports", authorize(a, authz.ObjectReports, logger)))
	}

	logger.Info("router initialized")

	return r
}
