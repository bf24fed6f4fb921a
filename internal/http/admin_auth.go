package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chatbot-router/internal/domain"
	"chatbot-router/internal/service"
)

const adminKey = "admin"

// AdminAuthMiddleware exige un access token de administrador y deja el admin en el contexto.
// Los refresh tokens no sirven aca: el servicio los rechaza por tipo.
func AdminAuthMiddleware(jwtSvc *service.JWTService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "admin auth not configured"})
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="admin"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := jwtSvc.ParseAccessToken(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, service.ErrJWTExpired) {
				msg = "token expired"
			}
			logger.Debug("admin token rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.Header("WWW-Authenticate", `Bearer realm="admin", error="invalid_token"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(adminKey, domain.Admin{Email: claims.Subject})
		c.Next()
	}
}

// CurrentAdmin devuelve el admin autenticado por AdminAuthMiddleware.
func CurrentAdmin(c *gin.Context) (domain.Admin, bool) {
	val, ok := c.Get(adminKey)
	if !ok {
		return domain.Admin{}, false
	}
	admin, ok := val.(domain.Admin)
	return admin, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
