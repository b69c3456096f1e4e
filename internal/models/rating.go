package models

import "github.com/google/uuid"

// Rating оценка фильма пользователем.
type Rating struct {
	ID      uuid.UUID
	Grade   float64 // От 0.0 до 5.0 с шагом 0.1
	Comment *string // nil, если комментарий не оставлен
	UserID  uuid.UUID
	FilmID  uuid.UUID
}
