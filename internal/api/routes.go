package api

import (
	"profileimport/internal/auth"
	"profileimport/internal/db"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the client-facing v1 API behind service-key auth.
func SetupRoutes(router *gin.Engine, dbService db.Service, handler *Handler) {
	router.GET("/health", handler.HealthHandler)

	v1 := router.Group("/v1")
	v1.Use(auth.Middleware(dbService))
	{
		v1.POST("/imports", handler.ImportHandler)
		v1.GET("/imports/quota", handler.QuotaHandler)
		v1.POST("/enrichments/summary", handler.SummaryHandler)
		v1.POST("/enrichments/skill", handler.SkillHandler)
	}
}
