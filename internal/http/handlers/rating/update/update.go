// Package update реализует HTTP-обработчик изменения оценки.
package update

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/20213tn048/sispe-backend/internal/http/handlers/rating/mapper"
	"github.com/20213tn048/sispe-backend/internal/http/response"
	"github.com/20213tn048/sispe-backend/internal/lib/sl"
	"github.com/20213tn048/sispe-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики изменения оценки.
type Service interface {
	Update(ctx context.Context, r models.Rating) error
}

// Handler обрабатывает запросы на изменение оценки.
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
// @Summary Изменить оценку
// @Tags Ratings
// @Accept  json
// @Produce  json
// @Param id path string true "Идентификатор оценки (32 hex)"
// @Param request body mapper.Request true "Оценка"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /ratings/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rating.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := mapper.PathID(w, r, log)
	if !ok {
		return
	}
	in, ok := mapper.Decode(w, r, log, h.validate)
	if !ok {
		return
	}
	in.ID = id

	if err := h.service.Update(r.Context(), in); err != nil {
		status, msg := mapper.Status(err)
		if status >= http.StatusInternalServerError {
			log.Error("failed to update rating", sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("rating updated", sl.ID("rating_id", id))
	render.JSON(w, r, response.OKWithMessage("rating updated", nil))
}
