package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chatbot-router/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
// adminH puede ser nil; en ese caso no se montan las rutas /admin.
func NewRouter(
	logger *zap.Logger,
	webhookH *WebhookHandler,
	adminH *AdminHandler,
	jwtSvc *service.JWTService,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/", webhookH.Index)
	r.GET("/webhook/", webhookH.Verify)
	r.POST("/webhook/", webhookH.Receive)

	if adminH != nil {
		admin := r.Group("/admin", jsonContentTypeMiddleware())
		admin.POST("/login", adminH.Login)
		admin.POST("/refresh", adminH.Refresh)
		admin.POST("/logout", adminH.Logout)
		admin.GET("/applications", AdminAuthMiddleware(jwtSvc, logger), adminH.ListApplications)
	}

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
