package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmlopes/processamento/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(
	processamentoHandler *handlers.ProcessamentoHandler,
	producaoHandler *handlers.ProducaoHandler,
	metasHandler *handlers.MetasHandler,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")

	api.POST("/processamento/propose", processamentoHandler.Propose)
	api.POST("/processamento/executar", processamentoHandler.Execute)
	api.POST("/processamento/backfill", processamentoHandler.Backfill)

	api.GET("/producao/:data", producaoHandler.GetDay)
	api.PUT("/producao/:data/turno/:turno", producaoHandler.ReplaceShift)
	api.PATCH("/producao/:data/turno/:turno/planejamento", producaoHandler.SetPlanned)

	api.GET("/metas", metasHandler.GetProjection)
	api.PUT("/metas/config", metasHandler.PutConfig)
	api.PUT("/metas/classificacao", metasHandler.PutClassificationTarget)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
