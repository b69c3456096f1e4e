// Package sl содержит вспомогательные функции для работы с логгером slog.
package sl

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/20213tn048/sispe-backend/internal/lib/identifier"
)

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
//
// Пример:
//
//	log.Error("failed to add favorite", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// ID возвращает slog.Attr с идентификатором в шестнадцатеричном виде.
func ID(key string, id uuid.UUID) slog.Attr {
	return slog.String(key, identifier.Format(id))
}
