package models

import "github.com/google/uuid"

// Favorite закладка пользователя на фильм. Пара (UserID, FilmID) уникальна.
type Favorite struct {
	ID     uuid.UUID
	UserID uuid.UUID
	FilmID uuid.UUID
}
