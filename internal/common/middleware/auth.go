package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/auth"
	"social-hub-backend/internal/common/errors"
)

const (
	ContextKeyRequestID = "request_id"
	ContextKeyPrincipal = "principal"
	ContextKeyUserID    = "user_id"
	ContextKeyDeviceID  = "device_id"

	ContextKeyDeviceMinted = "device_minted"
)

// Auth проверяет Supabase JWT из заголовка Authorization
func Auth(verifier *auth.Verifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			AbortWithError(c, errors.NewUnauthorizedError("bearer token required"), logger)
			return
		}

		principal, err := verifier.Verify(token)
		if err != nil {
			AbortWithError(c, errors.Wrap(err, errors.ErrCodeUnauthorized, "Invalid or expired access token"), logger)
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

func SetPrincipal(c *gin.Context, p *auth.Principal) {
	c.Set(ContextKeyPrincipal, p)
	c.Set(ContextKeyUserID, p.UserID)
}

// GetPrincipal возвращает аутентифицированного пользователя или nil
func GetPrincipal(c *gin.Context) *auth.Principal {
	if v, exists := c.Get(ContextKeyPrincipal); exists {
		if p, ok := v.(*auth.Principal); ok {
			return p
		}
	}
	return nil
}

func GetUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}
