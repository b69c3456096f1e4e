// Package category реализует HTTP-обработчики категорий каталога.
package category

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/20213tn048/sispe-backend/internal/http/response"
	"github.com/20213tn048/sispe-backend/internal/lib/identifier"
	"github.com/20213tn048/sispe-backend/internal/lib/sl"
	"github.com/20213tn048/sispe-backend/internal/models"
	"github.com/20213tn048/sispe-backend/internal/services/catalog"
)

// Request тело запроса создания или переименования категории.
type Request struct {
	Name string `json:"name" validate:"required,max=45" example:"Drama"`
}

// Category представление категории в ответе.
type Category struct {
	ID   identifier.Hex `json:"category_id" swaggertype:"string"`
	Name string         `json:"name"`
}

// Service описывает бизнес-логику категорий.
type Service interface {
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name string) error
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ReadCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// Handler обслуживает запросы к категориям.
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

// Create godoc
// @Summary Создать категорию
// @Tags Categories
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Категория"
// @Success 201 {object} response.Response{data=Category}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /categories [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.category.create")

	req, ok := h.decode(w, r, log)
	if !ok {
		return
	}
	c, err := h.service.CreateCategory(r.Context(), req.Name)
	if err != nil {
		log.Error("failed to create category", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("error creating category"))
		return
	}

	log.Info("category created", sl.ID("category_id", c.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithMessage("category created", fromModel(c)))
}

// Update godoc
// @Summary Переименовать категорию
// @Tags Categories
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "Идентификатор категории (32 hex)"
// @Param request body Request true "Новое название"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /categories/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.category.update")

	id, err := identifier.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Info("invalid category id", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid identifier"))
		return
	}
	req, ok := h.decode(w, r, log)
	if !ok {
		return
	}

	if err := h.service.UpdateCategory(r.Context(), id, req.Name); err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("category not found"))
			return
		}
		log.Error("failed to update category", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("error updating category"))
		return
	}
	render.JSON(w, r, response.OKWithMessage("category updated", nil))
}

// Read godoc
// @Summary Получить категорию
// @Tags Categories
// @Produce  json
// @Param id path string true "Идентификатор категории (32 hex)"
// @Success 200 {object} response.Response{data=Category}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /categories/{id} [get]
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.category.read")

	id, err := identifier.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid identifier"))
		return
	}
	c, err := h.service.ReadCategory(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("category not found"))
			return
		}
		log.Error("failed to read category", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("error fetching category"))
		return
	}
	render.JSON(w, r, response.OKWithData(fromModel(c)))
}

// List godoc
// @Summary Список категорий
// @Tags Categories
// @Produce  json
// @Success 200 {object} response.Response{data=[]Category}
// @Failure 404 {object} response.ErrorResponse "Категорий нет"
// @Failure 500 {object} response.ErrorResponse
// @Router /categories [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.category.list")

	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		log.Error("failed to list categories", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("error fetching categories"))
		return
	}
	if len(categories) == 0 {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("no categories found"))
		return
	}

	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, fromModel(c))
	}
	render.JSON(w, r, response.OKWithData(out))
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger) (Request, bool) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.JSON(w, r, response.ValidationError(verrs))
		} else {
			render.JSON(w, r, response.Error("invalid request"))
		}
		return req, false
	}
	return req, true
}

func fromModel(c *models.Category) Category {
	return Category{ID: identifier.Hex(c.ID), Name: c.Name}
}
