package middleware

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/errors"
)

// ErrorHandler middleware для обработки паник
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := getRequestID(c)
		stack := string(debug.Stack())

		logger.Error("Panic recovered",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.String("stack", stack),
		)

		// Стек в ответ не отдаем, только в лог
		appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
			WithRequestID(requestID).
			WithContext("panic", fmt.Sprintf("%v", recovered))

		sendErrorResponse(c, appErr, logger)
		c.Abort()
	})
}

// RequestID middleware для добавления ID запроса
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(ContextKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
	Path      string           `json:"path,omitempty"`
	Method    string           `json:"method,omitempty"`
}

// AbortWithError отправляет ошибку и прерывает цепочку обработчиков
func AbortWithError(c *gin.Context, err error, logger *zap.Logger) {
	sendErrorResponse(c, toAppError(c, err), logger)
	c.Abort()
}

// sendErrorResponse отправляет ошибку в формате JSON
func sendErrorResponse(c *gin.Context, appErr *errors.AppError, logger *zap.Logger) {
	requestID := getRequestID(c)

	appErr.WithRequestID(requestID).
		WithContext("path", c.Request.URL.Path).
		WithContext("method", c.Request.Method)

	statusCode := getHTTPStatusCode(appErr)

	if retryAfter, ok := appErr.Details["retry_after_seconds"]; ok {
		c.Header("Retry-After", fmt.Sprintf("%v", retryAfter))
	}

	response := ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: requestID,
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
	}

	logError(appErr, logger, c)

	c.JSON(statusCode, response)
}

// getHTTPStatusCode возвращает HTTP статус код для ошибки
func getHTTPStatusCode(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeValidation, errors.ErrCodeInvalidUserData, errors.ErrCodeBadRequest,
		errors.ErrCodePasswordPolicy, errors.ErrCodePasswordBreached, errors.ErrCodeInvalidCredentials,
		errors.ErrCodeUploadRejected:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeProfileNotFound, errors.ErrCodeSessionNotFound, errors.ErrCodePostNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized, errors.ErrCodeSessionRevoked:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden, errors.ErrCodeAdminAccessDenied:
		return http.StatusForbidden
	case errors.ErrCodeConflict, errors.ErrCodeDuplicatePost:
		return http.StatusConflict
	case errors.ErrCodeTooManyRequests, errors.ErrCodeRateLimit:
		return http.StatusTooManyRequests
	case errors.ErrCodeDatabaseError, errors.ErrCodeTransactionFailed, errors.ErrCodeConnectionFailed:
		return http.StatusInternalServerError
	case errors.ErrCodeCacheError:
		return http.StatusServiceUnavailable
	case errors.ErrCodeAuthProvider, errors.ErrCodeExternalAPI, errors.ErrCodeStorage:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// logError логирует ошибку с контекстом
func logError(appErr *errors.AppError, logger *zap.Logger, c *gin.Context) {
	fields := []zap.Field{
		zap.String("request_id", getRequestID(c)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("error_code", string(appErr.Code)),
		zap.String("error_message", appErr.Message),
		zap.Time("timestamp", appErr.Timestamp),
	}

	if userID := GetUserID(c); userID != "" {
		fields = append(fields, zap.String("user_id", userID))
	}

	if appErr.UserID != "" {
		fields = append(fields, zap.String("error_user_id", appErr.UserID))
	}

	if len(appErr.Details) > 0 {
		detailsJSON, _ := json.Marshal(appErr.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	if len(appErr.Context) > 0 {
		contextJSON, _ := json.Marshal(appErr.Context)
		fields = append(fields, zap.String("context", string(contextJSON)))
	}

	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}

	switch {
	case appErr.IsInternal():
		logger.Error("Internal error occurred", fields...)
	case appErr.IsUnauthorized():
		logger.Warn("Unauthorized access attempt", fields...)
	case appErr.IsValidation():
		logger.Info("Validation error", fields...)
	case appErr.IsNotFound():
		logger.Info("Resource not found", fields...)
	default:
		logger.Warn("Application error occurred", fields...)
	}
}

// getRequestID получает ID запроса из контекста
func getRequestID(c *gin.Context) string {
	if id := c.GetString(ContextKeyRequestID); id != "" {
		return id
	}
	return "unknown"
}

// toAppError приводит произвольную ошибку к AppError. Ошибки биндинга
// gin (validator.ValidationErrors) превращаются в VALIDATION_ERROR по полям.
func toAppError(c *gin.Context, err error) *errors.AppError {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		appErr := errors.NewValidationError(toSnake(first.Field()), describeTag(first))
		if len(verrs) > 1 {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[toSnake(fe.Field())] = describeTag(fe)
			}
			appErr.WithDetail("fields", fields)
		}
		return appErr
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &syntaxErr) || stderrors.As(err, &typeErr) {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "Malformed JSON body")
	}

	return errors.Wrap(err, errors.ErrCodeInternal, "Handler error occurred").
		WithRequestID(getRequestID(c)).
		WithUserID(GetUserID(c))
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "max", "len":
		return fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "e164orlocal":
		return "must be a valid phone number"
	case "deviceid":
		return "must be a UUID"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HandleErrorWrapper оборачивает обработчики для автоматической обработки ошибок
func HandleErrorWrapper(logger *zap.Logger) func(gin.HandlerFunc) gin.HandlerFunc {
	return func(handler gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			handler(c)

			if len(c.Errors) > 0 && !c.Writer.Written() {
				sendErrorResponse(c, toAppError(c, c.Errors.Last().Err), logger)
			}
		}
	}
}
