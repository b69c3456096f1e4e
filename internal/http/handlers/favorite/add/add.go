// Package add реализует HTTP-обработчик добавления фильма в избранное.
package add

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
	"github.com/20213tn048/sispe-backend/internal/models"
)

// Request тело запроса на добавление. Идентификаторы передаются как 32 шестнадцатеричных символа.
type Request struct {
	UserID string `json:"fk_user" validate:"required" example:"0123456789abcdef0123456789abcdef"`
	FilmID string `json:"fk_film" validate:"required" example:"fedcba9876543210fedcba9876543210"`
}

// Service описывает интерфейс бизнес-логики добавления в избранное.
type Service interface {
	AddFavorite(ctx context.Context, userHex, filmHex string) (*models.Favorite, error)
}

// Handler управляет HTTP-запросами на добавление в избранное.
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
// @Summary Добавить фильм в избранное
// @Description Добавляет активный фильм в избранное пользователя с действующей подпиской.
// @Tags Favorites
// @Accept  json
// @Produce  json
// @Param request body Request true "Пользователь и фильм"
// @Success 200 {object} response.Response{data=mapper.Favorite} "Фильм добавлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или нарушено бизнес-правило"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /favorites [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorite.add"
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

	fav, err := h.service.AddFavorite(r.Context(), req.UserID, req.FilmID)
	if err != nil {
		status, msg := mapper.Status(err)
		if status >= http.StatusInternalServerError {
			log.Error("failed to add favorite", sl.Err(err))
		} else {
			log.Info("favorite rejected", slog.String("reason", msg))
		}
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("favorite added", slog.String("favorite_id", mapper.FromModel(fav).ID.String()))
	render.JSON(w, r, response.OKWithMessage(mapper.MsgAdded, mapper.FromModel(fav)))
}
