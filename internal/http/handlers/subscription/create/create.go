// Package create реализует HTTP-обработчик оформления подписки.
//
// Даты принимаются в формате RFC3339 или как дата-время без часового пояса (UTC).
// Начало подписки не может быть в прошлом и должно предшествовать окончанию.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/20213tn048/sispe-backend/internal/http/response"
	"github.com/20213tn048/sispe-backend/internal/lib/identifier"
	"github.com/20213tn048/sispe-backend/internal/lib/sl"
	"github.com/20213tn048/sispe-backend/internal/models"
	"github.com/20213tn048/sispe-backend/internal/services/account"
)

var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Request данные новой подписки.
type Request struct {
	StartDate   string `json:"start_date" validate:"required" example:"2026-11-01T00:00:00Z"`
	EndDate     string `json:"end_date" validate:"required" example:"2026-12-01T00:00:00Z"`
	Transaction string `json:"transaction" validate:"required,max=60" example:"txn-0001"`
}

// Subscription оформленная подписка в ответе.
type Subscription struct {
	ID          identifier.Hex `json:"subscription_id" swaggertype:"string"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	Transaction string         `json:"transaction"`
}

// Service описывает интерфейс бизнес-логики создания подписки.
type Service interface {
	CreateSubscription(ctx context.Context, start, end time.Time, transaction string) (*models.Subscription, error)
}

// Handler управляет HTTP-запросами на создание подписок.
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
// @Summary Оформить подписку
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body Request true "Период и транзакция"
// @Success 201 {object} response.Response{data=Subscription}
// @Failure 400 {object} response.ErrorResponse "Некорректные даты"
// @Failure 500 {object} response.ErrorResponse
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid start_date format"))
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid end_date format"))
		return
	}

	sub, err := h.service.CreateSubscription(r.Context(), start, end, req.Transaction)
	if err != nil {
		for _, rejected := range []error{account.ErrStartInPast, account.ErrInvalidPeriod} {
			if errors.Is(err, rejected) {
				log.Info("subscription rejected", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(rejected.Error()))
				return
			}
		}
		log.Error("failed to create subscription", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create subscription"))
		return
	}

	log.Info("subscription created", sl.ID("subscription_id", sub.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithMessage("subscription created", Subscription{
		ID:          identifier.Hex(sub.ID),
		StartDate:   sub.StartDate,
		EndDate:     sub.EndDate,
		Transaction: sub.Transaction,
	}))
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format %q", s)
}
