// Package mapper содержит общие для обработчиков оценок DTO и соответствие ошибок HTTP-статусам.
package mapper

import (
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/20213tn048/sispe-backend/internal/http/response"
	"github.com/20213tn048/sispe-backend/internal/lib/identifier"
	"github.com/20213tn048/sispe-backend/internal/lib/sl"
	"github.com/20213tn048/sispe-backend/internal/models"
	"github.com/20213tn048/sispe-backend/internal/services/rating"
)

// Request тело запроса создания или обновления оценки.
type Request struct {
	Grade   float64 `json:"grade" validate:"gte=0,lte=5" example:"4.5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=255" example:"Отличный фильм"`
	UserID  string  `json:"fk_user" validate:"required,hexadecimal,len=32"`
	FilmID  string  `json:"fk_film" validate:"required,hexadecimal,len=32"`
}

// Rating представление оценки в ответе.
type Rating struct {
	ID      identifier.Hex `json:"rating_id" swaggertype:"string"`
	Grade   float64        `json:"grade"`
	Comment *string        `json:"comment"`
	UserID  identifier.Hex `json:"fk_user" swaggertype:"string"`
	FilmID  identifier.Hex `json:"fk_film" swaggertype:"string"`
}

// FromModel переводит доменную оценку в DTO.
func FromModel(r *models.Rating) Rating {
	return Rating{
		ID:      identifier.Hex(r.ID),
		Grade:   r.Grade,
		Comment: r.Comment,
		UserID:  identifier.Hex(r.UserID),
		FilmID:  identifier.Hex(r.FilmID),
	}
}

// ToModel проверяет запрос и переводит его в доменную оценку.
// Оценка округляется до одного знака после запятой.
func (req Request) ToModel() (models.Rating, error) {
	userID, err := identifier.Parse(req.UserID)
	if err != nil {
		return models.Rating{}, err
	}
	filmID, err := identifier.Parse(req.FilmID)
	if err != nil {
		return models.Rating{}, err
	}
	return models.Rating{
		Grade:   roundGrade(req.Grade),
		Comment: req.Comment,
		UserID:  userID,
		FilmID:  filmID,
	}, nil
}

func roundGrade(g float64) float64 {
	return math.Round(g*10) / 10
}

// Status возвращает HTTP-статус и сообщение для ошибки сервиса оценок.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, rating.ErrRatingNotFound):
		return http.StatusNotFound, "rating not found"
	case errors.Is(err, rating.ErrReferenceNotFound):
		return http.StatusBadRequest, "user or film does not exist"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// PathID извлекает идентификатор оценки из URL. При ошибке пишет ответ 400.
func PathID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	id, err := identifier.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Info("invalid rating id", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid rating_id format"))
		return uuid.Nil, false
	}
	return id, true
}

// Decode читает и проверяет тело запроса. При ошибке пишет ответ 400.
func Decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, v *validator.Validate) (models.Rating, bool) {
	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return models.Rating{}, false
	}
	if err := v.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.JSON(w, r, response.ValidationError(verrs))
		} else {
			render.JSON(w, r, response.Error("invalid request"))
		}
		return models.Rating{}, false
	}
	rt, err := req.ToModel()
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid identifier"))
		return models.Rating{}, false
	}
	return rt, true
}
