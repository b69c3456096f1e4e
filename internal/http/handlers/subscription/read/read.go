// Package read реализует HTTP-обработчик получения подписки по идентификатору.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/20213tn048/sispe-backend/internal/http/handlers/subscription/create"
	"github.com/20213tn048/sispe-backend/internal/http/response"
	"github.com/20213tn048/sispe-backend/internal/lib/identifier"
	"github.com/20213tn048/sispe-backend/internal/lib/sl"
	"github.com/20213tn048/sispe-backend/internal/models"
	"github.com/20213tn048/sispe-backend/internal/services/account"
)

// Service описывает интерфейс бизнес-логики чтения подписки.
type Service interface {
	ReadSubscription(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
}

// Handler обрабатывает запросы на получение подписки.
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
// @Summary Получить подписку
// @Tags Subscriptions
// @Produce  json
// @Param id path string true "Идентификатор подписки (32 hex)"
// @Success 200 {object} response.Response{data=create.Subscription}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /subscriptions/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := identifier.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Info("invalid subscription id", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid subscription_id format"))
		return
	}

	sub, err := h.service.ReadSubscription(r.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrSubscriptionNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
			return
		}
		log.Error("failed to read subscription", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OKWithData(create.Subscription{
		ID:          identifier.Hex(sub.ID),
		StartDate:   sub.StartDate,
		EndDate:     sub.EndDate,
		Transaction: sub.Transaction,
	}))
}
