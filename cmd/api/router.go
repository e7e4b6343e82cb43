package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"discount-campaigns-backend/internal/shared/middleware"
	"discount-campaigns-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		v1.GET("/products", c.CatalogHandler.ListProducts)

		promotions := v1.Group("/promotions")
		{
			promotions.GET("", c.PromotionHandler.ListActivePromotions)
			promotions.GET("/templates", c.PromotionHandler.ListTemplates)
			promotions.GET("/:code", c.PromotionHandler.GetPromotionByCode)
			promotions.POST("/calculate", c.PromotionHandler.Calculate)
		}
	}

	return router
}

func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}
		services := gin.H{"catalog": appCtx.Config.Catalog.Source}
		statusCode := http.StatusOK

		if appCtx.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				services["database"] = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
				statusCode = http.StatusServiceUnavailable
			} else {
				services["database"] = "ok"
			}
		}

		if appCtx.Cache != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				services["redis"] = fmt.Sprintf("error: %v", err)
			} else {
				services["redis"] = "ok"
			}
		}

		health["services"] = services
		c.JSON(statusCode, health)
	}
}
