// Package remove реализует HTTP-обработчик удаления оценки.
package remove

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
)

// Service описывает интерфейс бизнес-логики удаления оценки.
type Service interface {
	Remove(ctx context.Context, id uuid.UUID) error
}

// Handler обрабатывает запросы на удаление оценки.
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
// @Summary Удалить оценку
// @Tags Ratings
// @Produce  json
// @Param id path string true "Идентификатор оценки (32 hex)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /ratings/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rating.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := mapper.PathID(w, r, log)
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		status, msg := mapper.Status(err)
		if status >= http.StatusInternalServerError {
			log.Error("failed to delete rating", sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("rating deleted", sl.ID("rating_id", id))
	render.JSON(w, r, response.OKWithMessage("rating deleted", nil))
}
