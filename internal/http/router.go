package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mbti-bot/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	assessmentH *AssessmentHandler,
	adminH *AdminHandler,
	adminSvc *service.AdminService,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	assessment := r.Group("/assessment")
	assessment.POST("/start", assessmentH.Start)
	assessment.POST("/answer", assessmentH.Answer)
	assessment.GET("/result/:user_id", assessmentH.CurrentResult)
	assessment.GET("/history/:user_id", assessmentH.History)
	assessment.GET("/trend/:user_id", assessmentH.Trend)

	admin := r.Group("/admin")
	admin.POST("/login", adminH.Login)
	admin.DELETE("/history/:user_id", AdminAuthMiddleware(adminSvc), adminH.DeleteHistory)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
