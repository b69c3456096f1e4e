// Package list реализует HTTP-обработчики получения избранного пользователя.
//
// Пользователь задается либо телом запроса {"fk_user": "..."}, либо параметром пути {fk_user}.
package list

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/20213tn048/sispe-backend/internal/http/handlers/favorite/mapper"
	"github.com/20213tn048/sispe-backend/internal/http/response"
	"github.com/20213tn048/sispe-backend/internal/lib/sl"
	"github.com/20213tn048/sispe-backend/internal/models"
)

// Request тело запроса списка.
type Request struct {
	UserID string `json:"fk_user"`
}

// Service описывает интерфейс бизнес-логики получения избранного.
type Service interface {
	ListFavorites(ctx context.Context, userHex string) ([]*models.Favorite, error)
}

// Handler управляет HTTP-запросами на получение избранного.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список избранного
// @Description Возвращает избранное пользователя. Пустой список сопровождается сообщением "favorites not found".
// @Tags Favorites
// @Accept  json
// @Produce  json
// @Param request body Request true "Пользователь"
// @Success 200 {object} response.Response{data=[]mapper.Favorite} "Избранное"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /favorites/list [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorite.list"
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
	h.respond(w, r, log, req.UserID)
}

// ByPath godoc
// @Summary Список избранного по пути
// @Tags Favorites
// @Produce  json
// @Param fk_user path string true "Идентификатор пользователя (32 hex)"
// @Success 200 {object} response.Response{data=[]mapper.Favorite} "Избранное"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{fk_user}/favorites [get]
func (h *Handler) ByPath(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorite.list.by_path"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	h.respond(w, r, log, chi.URLParam(r, "fk_user"))
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, log *slog.Logger, userHex string) {
	favs, err := h.service.ListFavorites(r.Context(), userHex)
	if err != nil {
		status, msg := mapper.Status(err)
		if status >= http.StatusInternalServerError {
			log.Error("failed to list favorites", sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	if len(favs) == 0 {
		render.JSON(w, r, response.OKWithMessage(mapper.MsgListEmpty, mapper.FromModels(nil)))
		return
	}
	log.Info("favorites listed", slog.Int("count", len(favs)))
	render.JSON(w, r, response.OKWithData(mapper.FromModels(favs)))
}
