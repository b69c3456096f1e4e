package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription описывает оплаченный период доступа к каталогу.
type Subscription struct {
	ID          uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	Transaction string // Ссылка на платёжную транзакцию
}

// IsValidAt сообщает, попадает ли момент t в интервал подписки (границы включены).
func (s Subscription) IsValidAt(t time.Time) bool {
	return !t.Before(s.StartDate) && !t.After(s.EndDate)
}
