// Package read реализует HTTP-обработчик получения оценки по идентификатору.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/20213tn048/sispe-backend/internal/http/handlers/rating/mapper"
	"github.com/20213tn048/sispe-backend/internal/http/response"
	"github.com/20213tn048/sispe-backend/internal/lib/sl"
	"github.com/20213tn048/sispe-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики чтения оценки.
type Service interface {
	Read(ctx context.Context, id uuid.UUID) (*models.Rating, error)
}

// Handler обрабатывает запросы на получение оценки.
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
// @Summary Получить оценку
// @Tags Ratings
// @Produce  json
// @Param id path string true "Идентификатор оценки (32 hex)"
// @Success 200 {object} response.Response{data=mapper.Rating}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /ratings/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rating.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := mapper.PathID(w, r, log)
	if !ok {
		return
	}

	res, err := h.service.Read(r.Context(), id)
	if err != nil {
		status, msg := mapper.Status(err)
		if status >= http.StatusInternalServerError {
			log.Error("failed to read rating", sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	render.JSON(w, r, response.OKWithData(mapper.FromModel(res)))
}
