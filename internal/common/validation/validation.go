package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// Максимальные длины для различных полей
	MaxUsernameLength = 30
	MaxFullNameLength = 100
	MaxBioLength      = 500
	MaxPostLength     = 5000

	// Минимальные длины
	MinUsernameLength = 3
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_.]+$`)

var supportedLanguages = []string{"en", "es", "fr", "de", "pt", "ru", "ar", "hi"}

var validRoles = []string{"user", "moderator", "admin"}

// ValidateUsername проверяет имя пользователя профиля
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLength)
	}
	if n > MaxUsernameLength {
		return fmt.Errorf("username cannot exceed %d characters", MaxUsernameLength)
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must contain only lowercase letters, numbers, dots and underscores")
	}
	if strings.HasPrefix(username, ".") || strings.HasSuffix(username, ".") {
		return fmt.Errorf("username cannot start or end with a dot")
	}

	return nil
}

// ValidateFullName проверяет отображаемое имя
func ValidateFullName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("full name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxFullNameLength {
		return fmt.Errorf("full name cannot exceed %d characters", MaxFullNameLength)
	}
	return nil
}

func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return fmt.Errorf("bio cannot exceed %d characters", MaxBioLength)
	}
	return nil
}

func ValidatePostContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxPostLength {
		return fmt.Errorf("content cannot exceed %d characters", MaxPostLength)
	}
	return nil
}

// ValidateLanguage проверяет код языка интерфейса
func ValidateLanguage(lang string) error {
	for _, l := range supportedLanguages {
		if lang == l {
			return nil
		}
	}
	return fmt.Errorf("unsupported language: %s. Supported languages: %v", lang, supportedLanguages)
}

func IsSupportedLanguage(lang string) bool {
	return ValidateLanguage(lang) == nil
}

// ValidateUserRole проверяет роль пользователя
func ValidateUserRole(role string) error {
	for _, r := range validRoles {
		if role == r {
			return nil
		}
	}
	return fmt.Errorf("invalid role: %s. Valid roles: %v", role, validRoles)
}
