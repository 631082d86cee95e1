package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode представляет код ошибки
type ErrorCode string

const (
	// Общие ошибки
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"

	// Профили
	ErrCodeProfileNotFound ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeInvalidUserData ErrorCode = "INVALID_USER_DATA"

	// Сессии устройств
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionRevoked  ErrorCode = "SESSION_REVOKED"

	// Доступ к админке
	ErrCodeAdminAccessDenied ErrorCode = "ADMIN_ACCESS_DENIED"

	// Пароли
	ErrCodePasswordPolicy     ErrorCode = "PASSWORD_POLICY"
	ErrCodePasswordBreached   ErrorCode = "PASSWORD_BREACHED"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"

	// Посты
	ErrCodePostNotFound  ErrorCode = "POST_NOT_FOUND"
	ErrCodeDuplicatePost ErrorCode = "DUPLICATE_POST"

	// Медиа
	ErrCodeUploadRejected ErrorCode = "UPLOAD_REJECTED"
	ErrCodeStorage        ErrorCode = "STORAGE_ERROR"

	// Ошибки базы данных
	ErrCodeDatabaseError     ErrorCode = "DATABASE_ERROR"
	ErrCodeTransactionFailed ErrorCode = "TRANSACTION_FAILED"
	ErrCodeConnectionFailed  ErrorCode = "CONNECTION_FAILED"

	// Ошибки кэша
	ErrCodeCacheError ErrorCode = "CACHE_ERROR"

	// Ошибки внешних API
	ErrCodeAuthProvider ErrorCode = "AUTH_PROVIDER_ERROR"
	ErrCodeExternalAPI  ErrorCode = "EXTERNAL_API_ERROR"
	ErrCodeRateLimit    ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// AppError представляет типизированную ошибку приложения
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Context   map[string]string      `json:"context,omitempty"`
	Stack     []string               `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound проверяет, является ли ошибка ошибкой "не найдено"
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound ||
		e.Code == ErrCodeProfileNotFound ||
		e.Code == ErrCodeSessionNotFound ||
		e.Code == ErrCodePostNotFound
}

// IsValidation проверяет, является ли ошибка ошибкой валидации
func (e *AppError) IsValidation() bool {
	return e.Code == ErrCodeValidation ||
		e.Code == ErrCodeInvalidUserData ||
		e.Code == ErrCodePasswordPolicy ||
		e.Code == ErrCodePasswordBreached ||
		e.Code == ErrCodeUploadRejected
}

// IsUnauthorized проверяет, является ли ошибка ошибкой авторизации
func (e *AppError) IsUnauthorized() bool {
	return e.Code == ErrCodeUnauthorized ||
		e.Code == ErrCodeForbidden ||
		e.Code == ErrCodeSessionRevoked ||
		e.Code == ErrCodeAdminAccessDenied ||
		e.Code == ErrCodeInvalidCredentials
}

// IsInternal проверяет, является ли ошибка внутренней ошибкой
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal ||
		e.Code == ErrCodeDatabaseError ||
		e.Code == ErrCodeCacheError ||
		e.Code == ErrCodeStorage ||
		e.Code == ErrCodeAuthProvider
}

// WithContext добавляет контекст к ошибке
func (e *AppError) WithContext(key, value string) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithDetail добавляет детальную информацию к ошибке
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

func (e *AppError) WithUserID(userID string) *AppError {
	e.UserID = userID
	return e
}

// New создает новую ошибку приложения
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Stack:     getStackTrace(),
	}
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf оборачивает существующую ошибку с форматированием
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func getStackTrace() []string {
	var stack []string
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		// Пропускаем внутренние функции пакета errors
		if strings.Contains(fn.Name(), "internal/common/errors") {
			continue
		}
		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		if len(stack) >= 10 {
			break
		}
	}
	return stack
}

// Конструкторы для часто используемых ошибок

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewBadRequestError(reason string) *AppError {
	return New(ErrCodeBadRequest, reason)
}

func NewNotFoundError(resource, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewProfileNotFoundError(userID string) *AppError {
	return New(ErrCodeProfileNotFound, fmt.Sprintf("Profile not found: %s", userID)).
		WithDetail("user_id", userID)
}

func NewSessionNotFoundError(sessionID string) *AppError {
	return New(ErrCodeSessionNotFound, fmt.Sprintf("Session not found: %s", sessionID)).
		WithDetail("session_id", sessionID)
}

func NewPostNotFoundError(postID string) *AppError {
	return New(ErrCodePostNotFound, fmt.Sprintf("Post not found: %s", postID)).
		WithDetail("post_id", postID)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason)).
		WithDetail("reason", reason)
}

func NewForbiddenError(reason string) *AppError {
	return New(ErrCodeForbidden, fmt.Sprintf("Forbidden: %s", reason)).
		WithDetail("reason", reason)
}

func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, fmt.Sprintf("Database operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewCacheError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeCacheError, fmt.Sprintf("Cache operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewStorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorage, fmt.Sprintf("Storage operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewAuthProviderError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeAuthProvider, fmt.Sprintf("Auth provider operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewRateLimitError создает ошибку превышения лимита запросов
func NewRateLimitError(service string, retryAfter time.Duration) *AppError {
	return New(ErrCodeRateLimit, fmt.Sprintf("Rate limit exceeded for %s", service)).
		WithDetail("service", service).
		WithDetail("retry_after", retryAfter.String())
}

func NewConflictError(resource, reason string) *AppError {
	return New(ErrCodeConflict, fmt.Sprintf("Conflict with %s: %s", resource, reason)).
		WithDetail("resource", resource).
		WithDetail("reason", reason)
}

// AsAppError приводит ошибку к AppError, в том числе обернутую через %w
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err == nil {
		return nil, false
	}
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode сообщает, несет ли ошибка указанный код
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
