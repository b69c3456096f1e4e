// Package create реализует HTTP-обработчик выставления оценки фильму.
package create

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

// Service описывает интерфейс бизнес-логики создания оценки.
type Service interface {
	Create(ctx context.Context, r models.Rating) (*models.Rating, error)
}

// Handler обрабатывает запросы на создание оценки.
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
// @Summary Оценить фильм
// @Tags Ratings
// @Accept  json
// @Produce  json
// @Param request body mapper.Request true "Оценка"
// @Success 201 {object} response.Response{data=mapper.Rating}
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /ratings [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rating.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	in, ok := mapper.Decode(w, r, log, h.validate)
	if !ok {
		return
	}

	res, err := h.service.Create(r.Context(), in)
	if err != nil {
		status, msg := mapper.Status(err)
		if status >= http.StatusInternalServerError {
			log.Error("failed to create rating", sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("rating created", sl.ID("rating_id", res.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithMessage("rating created", mapper.FromModel(res)))
}
