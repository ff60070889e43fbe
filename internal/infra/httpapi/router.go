package httpapi

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed ui/index.html
var uiFS embed.FS

func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.SetHTMLTemplate(template.Must(template.ParseFS(uiFS, "ui/index.html")))
	router.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", nil)
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyses", h.CreateAnalysis)
		v1.GET("/analyses", h.ListAnalyses)
		v1.GET("/analyses/export.csv", h.ExportCSV)
		v1.GET("/analyses/export.zip", h.ExportBundle)
		v1.GET("/analyses/:id", h.GetAnalysis)
		v1.DELETE("/analyses/:id", h.DeleteAnalysis)
		v1.GET("/analyses/:id/thumbnail", h.GetThumbnail)
	}

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
