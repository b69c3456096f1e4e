// Package identifier разбирает и форматирует 16-байтовые идентификаторы сущностей.
//
// Во внешнем мире идентификатор передаётся строкой из 32 шестнадцатеричных символов
// без дефисов. Любая другая форма отвергается до обращения к хранилищу.
package identifier

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Length длина строкового представления идентификатора.
const Length = 32

// ErrInvalidIdentifier возвращается, если строка не является корректным идентификатором.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Parse проверяет строку и возвращает 16-байтовый идентификатор.
func Parse(s string) (uuid.UUID, error) {
	if len(s) != Length {
		return uuid.Nil, fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidIdentifier, Length, len(s))
	}
	var id uuid.UUID
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrInvalidIdentifier, err.Error())
	}
	return id, nil
}

// Format возвращает идентификатор в виде 32 символов в нижнем регистре.
func Format(id uuid.UUID) string {
	return hex.EncodeToString(id[:])
}

// New генерирует новый случайный идентификатор.
func New() uuid.UUID {
	return uuid.New()
}

// Hex оборачивает идентификатор для сериализации в JSON строкой из 32 символов.
type Hex uuid.UUID

// MarshalJSON реализует json.Marshaler.
func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(Format(uuid.UUID(h)))
}

// UnmarshalJSON реализует json.Unmarshaler.
func (h *Hex) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := Parse(s)
	if err != nil {
		return err
	}
	*h = Hex(id)
	return nil
}

// String реализует fmt.Stringer.
func (h Hex) String() string {
	return Format(uuid.UUID(h))
}
