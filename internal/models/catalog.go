package models

import "github.com/google/uuid"

// FilmStatus статус фильма в каталоге.
type FilmStatus string

// Допустимые статусы фильма. Добавлять в избранное можно только активные фильмы.
const (
	FilmStatusActive   FilmStatus = "active"
	FilmStatusInactive FilmStatus = "inactive"
)

// Category категория фильмов.
type Category struct {
	ID   uuid.UUID
	Name string
}

// Film фильм каталога.
type Film struct {
	ID          uuid.UUID
	Title       string
	Description string
	Length      float64 // Продолжительность в часах, DECIMAL(4,2)
	Status      FilmStatus
	CategoryID  uuid.UUID
}
