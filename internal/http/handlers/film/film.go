// Package film реализует HTTP-обработчики фильмов каталога.
package film

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

// Request тело запроса создания или обновления фильма.
type Request struct {
	Title       string  `json:"title" validate:"required,max=60" example:"Roma"`
	Description string  `json:"description" validate:"required,max=255" example:"Drama"`
	Length      float64 `json:"length" validate:"gt=0,lte=99.99" example:"2.15"`
	Status      string  `json:"status" validate:"required,oneof=active inactive" example:"active"`
	CategoryID  string  `json:"fk_category" validate:"required,hexadecimal,len=32"`
}

// Film представление фильма в ответе.
type Film struct {
	ID          identifier.Hex `json:"film_id" swaggertype:"string"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Length      float64        `json:"length"`
	Status      string         `json:"status"`
	CategoryID  identifier.Hex `json:"fk_category" swaggertype:"string"`
}

// Service описывает бизнес-логику фильмов.
type Service interface {
	CreateFilm(ctx context.Context, f models.Film) (*models.Film, error)
	UpdateFilm(ctx context.Context, f models.Film) error
	RemoveFilm(ctx context.Context, id uuid.UUID) error
	ReadFilm(ctx context.Context, id uuid.UUID) (*models.Film, error)
	ListFilms(ctx context.Context) ([]*models.Film, error)
}

// Handler обслуживает запросы к фильмам.
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
// @Summary Создать фильм
// @Tags Films
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Фильм"
// @Success 201 {object} response.Response{data=Film}
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или категория не существует"
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /films [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.film.create")

	f, ok := h.decode(w, r, log)
	if !ok {
		return
	}
	created, err := h.service.CreateFilm(r.Context(), f)
	if err != nil {
		h.fail(w, r, log, err, "error creating film")
		return
	}

	log.Info("film created", sl.ID("film_id", created.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithMessage("film created", fromModel(created)))
}

// Update godoc
// @Summary Обновить фильм
// @Tags Films
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "Идентификатор фильма (32 hex)"
// @Param request body Request true "Фильм"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /films/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.film.update")

	id, ok := h.pathID(w, r, log)
	if !ok {
		return
	}
	f, ok := h.decode(w, r, log)
	if !ok {
		return
	}
	f.ID = id
	if err := h.service.UpdateFilm(r.Context(), f); err != nil {
		h.fail(w, r, log, err, "error updating film")
		return
	}
	render.JSON(w, r, response.OKWithMessage("film updated", nil))
}

// Remove godoc
// @Summary Удалить фильм
// @Tags Films
// @Produce  json
// @Security BearerAuth
// @Param id path string true "Идентификатор фильма (32 hex)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /films/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.film.remove")

	id, ok := h.pathID(w, r, log)
	if !ok {
		return
	}
	if err := h.service.RemoveFilm(r.Context(), id); err != nil {
		h.fail(w, r, log, err, "error deleting film")
		return
	}
	log.Info("film deleted", sl.ID("film_id", id))
	render.JSON(w, r, response.OKWithMessage("film deleted", nil))
}

// Read godoc
// @Summary Получить фильм
// @Tags Films
// @Produce  json
// @Param id path string true "Идентификатор фильма (32 hex)"
// @Success 200 {object} response.Response{data=Film}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /films/{id} [get]
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.film.read")

	id, ok := h.pathID(w, r, log)
	if !ok {
		return
	}
	f, err := h.service.ReadFilm(r.Context(), id)
	if err != nil {
		h.fail(w, r, log, err, "error fetching film")
		return
	}
	render.JSON(w, r, response.OKWithData(fromModel(f)))
}

// List godoc
// @Summary Список фильмов
// @Tags Films
// @Produce  json
// @Success 200 {object} response.Response{data=[]Film}
// @Failure 404 {object} response.ErrorResponse "Фильмов нет"
// @Failure 500 {object} response.ErrorResponse
// @Router /films [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.film.list")

	films, err := h.service.ListFilms(r.Context())
	if err != nil {
		h.fail(w, r, log, err, "error fetching films")
		return
	}
	if len(films) == 0 {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("no films found"))
		return
	}

	out := make([]Film, 0, len(films))
	for _, f := range films {
		out = append(out, fromModel(f))
	}
	render.JSON(w, r, response.OKWithData(out))
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	id, err := identifier.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Info("invalid film id", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid film_id format"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log *slog.Logger) (models.Film, bool) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return models.Film{}, false
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
		return models.Film{}, false
	}
	categoryID, err := identifier.Parse(req.CategoryID)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid identifier"))
		return models.Film{}, false
	}
	return models.Film{
		Title:       req.Title,
		Description: req.Description,
		Length:      req.Length,
		Status:      models.FilmStatus(req.Status),
		CategoryID:  categoryID,
	}, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, internalMsg string) {
	switch {
	case errors.Is(err, catalog.ErrFilmNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("film not found"))
	case errors.Is(err, catalog.ErrCategoryNotFound):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("category ID does not exist"))
	default:
		log.Error(internalMsg, sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(internalMsg))
	}
}

func fromModel(f *models.Film) Film {
	return Film{
		ID:          identifier.Hex(f.ID),
		Title:       f.Title,
		Description: f.Description,
		Length:      f.Length,
		Status:      string(f.Status),
		CategoryID:  identifier.Hex(f.CategoryID),
	}
}
