package repository

import "context"

type TranslationRepository interface {
	// GetLanguage словарь key→value, пустой map для неизвестного языка
	GetLanguage(ctx context.Context, language string) (map[string]string, error)
}
