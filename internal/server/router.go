package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"photogallery/internal/config"
	"photogallery/internal/flash"
	"photogallery/internal/metrics"
	"photogallery/internal/photo"
	"photogallery/internal/storage"
	"photogallery/internal/web"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config       config.Config
	DB           *pgxpool.Pool
	Files        *storage.DiskStore
	PhotoService *photo.Service
	Flashes      *flash.Store
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(bodyLimit(deps.Config.Upload.MaxContentLength))

	metrics.InitMetrics()
	router.Use(metrics.Middleware())
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	templates, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(templates)

	if deps.Files != nil {
		router.Static("/uploads", deps.Files.Dir())
	}

	registerHealthRoutes(router, deps)

	if deps.PhotoService != nil {
		photo.RegisterRoutes(router, deps.PhotoService, deps.Flashes, deps.Config.Gallery.PageSize)
	}

	return router, nil
}

// bodyLimit bounds the aggregate request body, rejecting oversized requests
// before any file is written.
func bodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
