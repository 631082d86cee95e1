package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/features/adminaccess/service"
)

const ContextKeyAccessState = "admin_access"

// RequireAdmin пропускает только пользователей с подтвержденным доступом
func RequireAdmin(svc service.AccessService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := middleware.GetPrincipal(c)
		if principal == nil {
			middleware.AbortWithError(c, errors.NewUnauthorizedError("authentication required"), logger)
			return
		}

		state, err := svc.Validate(c.Request.Context(), principal)
		if err != nil {
			middleware.AbortWithError(c, err, logger)
			return
		}

		if !state.Granted() {
			appErr := errors.New(errors.ErrCodeAdminAccessDenied, state.Message).
				WithUserID(principal.UserID).
				WithDetail("source", state.Source).
				WithDetail("attempts", state.Attempts)
			middleware.AbortWithError(c, appErr, logger)
			return
		}

		c.Set(ContextKeyAccessState, state)
		c.Next()
	}
}
