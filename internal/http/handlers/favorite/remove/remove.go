// Package remove реализует HTTP-обработчик удаления фильма из избранного.
package remove

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/20213tn048/sispe-backend/internal/http/handlers/favorite/mapper"
	"github.com/20213tn048/sispe-backend/internal/http/response"
	"github.com/20213tn048/sispe-backend/internal/lib/sl"
)

// Request тело запроса на удаление.
type Request struct {
	UserID string `json:"fk_user" validate:"required"`
	FilmID string `json:"fk_film" validate:"required"`
}

// Service описывает интерфейс бизнес-логики удаления из избранного.
type Service interface {
	RemoveFavorite(ctx context.Context, userHex, filmHex string) error
}

// Handler управляет HTTP-запросами на удаление из избранного.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Удалить фильм из избранного
// @Tags Favorites
// @Accept  json
// @Produce  json
// @Param request body Request true "Пользователь и фильм"
// @Success 200 {object} response.Response "Фильм удален"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или записи нет"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /favorites [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorite.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		status, msg := mapper.Status(mapper.ErrMalformedRequestBody)
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		render.JSON(w, r, response.Error(mapper.MsgMissingField))
		return
	}

	if err := h.service.RemoveFavorite(r.Context(), req.UserID, req.FilmID); err != nil {
		status, msg := mapper.Status(err)
		if status >= http.StatusInternalServerError {
			log.Error("failed to remove favorite", sl.Err(err))
		} else {
			log.Info("favorite removal rejected", slog.String("reason", msg))
		}
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("favorite removed")
	render.JSON(w, r, response.OKWithMessage(mapper.MsgRemoved, nil))
}
