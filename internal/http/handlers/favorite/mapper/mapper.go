// Package mapper переводит результаты сценариев избранного в HTTP-статус и текст ответа.
package mapper

import (
	"errors"
	"net/http"

	"github.com/20213tn048/sispe-backend/internal/lib/identifier"
	"github.com/20213tn048/sispe-backend/internal/models"
	"github.com/20213tn048/sispe-backend/internal/services/favorite"
)

// ErrMalformedRequestBody тело запроса не является корректным JSON.
var ErrMalformedRequestBody = errors.New("malformed request body")

// Сообщения ответов.
const (
	MsgAdded          = "film added to favorites"
	MsgRemoved        = "film removed from favorites"
	MsgListEmpty      = "favorites not found"
	MsgInternalError  = "internal error"
	MsgMalformedBody  = "invalid request body"
	MsgMissingField   = "missing required field"
	MsgInvalidID      = "invalid identifier"
	MsgUserNotFound   = "user not found"
	MsgSubscription   = "subscription is not valid or has expired"
	MsgFilmNotFound   = "film is not available or does not exist"
	MsgAlreadyExists  = "film already in favorites list"
	MsgFavoriteAbsent = "film is not in favorites list"
)

// Status возвращает HTTP-статус и сообщение для ошибки сценария.
// Отказ хранилища и неизвестные ошибки дают 500 без подробностей.
func Status(err error) (int, string) {
	var storageErr *favorite.StorageError
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError, MsgInternalError
	case errors.Is(err, ErrMalformedRequestBody):
		return http.StatusBadRequest, MsgMalformedBody
	case errors.Is(err, favorite.ErrMissingField):
		return http.StatusBadRequest, MsgMissingField
	case errors.Is(err, identifier.ErrInvalidIdentifier):
		return http.StatusBadRequest, MsgInvalidID
	case errors.Is(err, favorite.ErrUserNotFound):
		return http.StatusBadRequest, MsgUserNotFound
	case errors.Is(err, favorite.ErrSubscriptionInvalid):
		return http.StatusBadRequest, MsgSubscription
	case errors.Is(err, favorite.ErrFilmNotFound):
		return http.StatusBadRequest, MsgFilmNotFound
	case errors.Is(err, favorite.ErrFavoriteAlreadyExists):
		return http.StatusBadRequest, MsgAlreadyExists
	case errors.Is(err, favorite.ErrFavoriteNotFound):
		return http.StatusBadRequest, MsgFavoriteAbsent
	default:
		return http.StatusInternalServerError, MsgInternalError
	}
}

// Favorite представление записи избранного в ответе.
type Favorite struct {
	ID     identifier.Hex `json:"favorite_id" swaggertype:"string" example:"9f1c2b7e4d3a4e6f8a0b1c2d3e4f5a6b"`
	UserID identifier.Hex `json:"fk_user" swaggertype:"string"`
	FilmID identifier.Hex `json:"fk_film" swaggertype:"string"`
}

// FromModel строит представление записи избранного.
func FromModel(f *models.Favorite) Favorite {
	return Favorite{
		ID:     identifier.Hex(f.ID),
		UserID: identifier.Hex(f.UserID),
		FilmID: identifier.Hex(f.FilmID),
	}
}

// FromModels строит представления списка. Для пустого входа возвращает пустой, а не nil срез.
func FromModels(favs []*models.Favorite) []Favorite {
	out := make([]Favorite, 0, len(favs))
	for _, f := range favs {
		out = append(out, FromModel(f))
	}
	return out
}
