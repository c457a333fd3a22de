package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tarcin/docissuer/internal/app/controllers"
	"github.com/tarcin/docissuer/internal/middleware"
)

// Controllers groups every handler the router mounts
type Controllers struct {
	Auth         *controllers.AuthController
	Certificates *controllers.CertificateController
	Letters      *controllers.LetterController
	Batches      *controllers.BatchController
	Stats        *controllers.StatsController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.GET("/health", ctrl.Stats.Health)
	v1.GET("/verify", ctrl.Certificates.VerifyCertificate)
	v1.POST("/auth/login", ctrl.Auth.Login)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.RequireAuth())

	certificates := authenticated.Group("/certificates")
	{
		certificates.POST("", ctrl.Certificates.CreateCertificate)
		certificates.POST("/bulk", ctrl.Certificates.BulkCreateCertificates)
		certificates.GET("", ctrl.Certificates.ListCertificates)
		certificates.GET("/:id", ctrl.Certificates.GetCertificate)
		certificates.GET("/:id/pdf", ctrl.Certificates.DownloadCertificate)
	}

	letters := authenticated.Group("/letters")
	{
		letters.POST("", ctrl.Letters.CreateLetter)
		letters.POST("/bulk", ctrl.Letters.BulkCreateLetters)
		letters.GET("", ctrl.Letters.ListLetters)
		letters.GET("/:id", ctrl.Letters.GetLetter)
		letters.GET("/:id/pdf", ctrl.Letters.DownloadLetter)
	}

	batches := authenticated.Group("/batches")
	{
		batches.GET("", ctrl.Batches.ListBatches)
		batches.GET("/:id", ctrl.Batches.GetBatch)
		batches.GET("/:id/certificates", ctrl.Batches.ListBatchCertificates)
		batches.GET("/:id/letters", ctrl.Batches.ListBatchLetters)
		batches.GET("/:id/archive", ctrl.Batches.DownloadArchive)
		batches.GET("/:id/export", ctrl.Batches.ExportBatch)
		batches.GET("/:id/source", ctrl.Batches.DownloadSource)
	}

	authenticated.GET("/stats", ctrl.Stats.GetStats)
}
