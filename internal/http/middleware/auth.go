package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/apns-backend/internal/platform/ctxutil"
	"github.com/yungbote/apns-backend/internal/platform/logger"
	"github.com/yungbote/apns-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// Identify attaches the caller's identity when a valid bearer token is
// presented. Routes stay public: a missing or bad token is not an error.
func (am *AuthMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" || am.authService == nil {
			c.Next()
			return
		}
		claims, err := am.authService.ParseAccessToken(tokenString)
		if err != nil {
			am.log.Debug("ignoring bearer token", "error", err)
			c.Next()
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			UserID: claims.Subject,
			Role:   claims.Role,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", claims.Subject)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
