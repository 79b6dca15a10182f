package admin

import (
	"profileimport/internal/auth"
	"profileimport/internal/config"
	"profileimport/internal/db"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, dbService db.Service, cfg *config.Config) {
	handler := NewHandler(dbService)

	adminGroup := router.Group("/admin")
	adminGroup.Use(auth.AdminAuthMiddleware(cfg.Admin.Password))
	{
		credentialsGroup := adminGroup.Group("/credentials")
		{
			credentialsGroup.GET("", handler.ListCredentialsHandler)
			credentialsGroup.POST("", handler.CreateCredentialHandler)
			credentialsGroup.GET("/:id", handler.GetCredentialHandler)
			credentialsGroup.PUT("/:id", handler.UpdateCredentialHandler)
			credentialsGroup.DELETE("/:id", handler.DeleteCredentialHandler)
			credentialsGroup.POST("/:id/activate", handler.ActivateCredentialHandler)
			credentialsGroup.POST("/:id/deactivate", handler.DeactivateCredentialHandler)
		}

		serviceKeysGroup := adminGroup.Group("/service-keys")
		{
			serviceKeysGroup.GET("", handler.ListServiceKeysHandler)
			serviceKeysGroup.POST("", handler.CreateServiceKeyHandler)
			serviceKeysGroup.DELETE("/:id", handler.DeleteServiceKeyHandler)
		}
	}
}
