package router

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"wishwell/config"
	"wishwell/internal/handler"
	"wishwell/internal/middleware"
	"wishwell/internal/repository"
	"wishwell/internal/service"
	"wishwell/internal/ws"
	"wishwell/pkg/cloudinary"
	"wishwell/pkg/gateway"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	ledger := repository.NewLedger(db)
	statsHub := ws.NewHub()

	var provider gateway.Provider
	if cfg.Gateway.UseStub {
		log.Printf("[GATEWAY] using stub provider")
		provider = gateway.NewStubProvider()
	} else {
		provider = gateway.NewPaypalProvider(cfg.Gateway.BaseURL, cfg.Gateway.ClientID, cfg.Gateway.ClientSecret, cfg.Gateway.Timeout)
	}

	statsSvc := service.NewStatsService(ledger, &cfg.Funding, &cfg.Stats, statsHub)
	wishSvc := service.NewWishService(ledger, &cfg.Funding)
	paymentSvc := service.NewPaymentService(ledger, provider, &cfg.Funding, statsSvc)

	wishHandler := handler.NewWishHandler(wishSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	uploadHandler := handler.NewUploadHandler(cloud)

	api := r.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "wishwell"})
		})

		api.POST("/wishes", wishHandler.Create)
		api.GET("/wishes", wishHandler.List)
		api.GET("/wishes/:id", wishHandler.Get)
		api.GET("/wishes/:id/donations", wishHandler.Donations)
		api.GET("/categories", wishHandler.Categories)
		api.GET("/success-stories", wishHandler.SuccessStories)
		api.GET("/statistics", statsHandler.Get)

		api.POST("/payments", paymentHandler.Create)
		api.POST("/payments/:id/execute", paymentHandler.Execute)
		api.POST("/payments/:id/cancel", paymentHandler.Cancel)

		api.POST("/uploads/wish-photo", uploadHandler.UploadWishPhoto)
	}

	r.GET("/ws/stats", ws.UpgradeStatsWS(statsHub, func() ([]byte, error) {
		snap, err := statsSvc.Snapshot(context.Background())
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]interface{}{"type": "statistics", "statistics": snap})
	}))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
