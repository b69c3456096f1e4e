// Package user реализует HTTP-обработчики администрирования пользователей.
// Маршруты доступны только с JWT администратора.
package user

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
	"github.com/20213tn048/sispe-backend/internal/services/account"
)

// Request новые данные пользователя. Пустой пароль не меняется.
type Request struct {
	Name           string `json:"name" validate:"required,max=45" example:"Ana"`
	LastName       string `json:"lastname" validate:"required,max=45" example:"Lopez"`
	Email          string `json:"email" validate:"required,email,max=60" example:"ana@sispe.mx"`
	Password       string `json:"password" validate:"omitempty,min=6" example:"secret123"`
	RoleID         string `json:"fk_rol" validate:"required,hexadecimal,len=32"`
	SubscriptionID string `json:"fk_subscription" validate:"required,hexadecimal,len=32"`
}

// User пользователь в ответе. Хэш пароля не возвращается.
type User struct {
	ID             identifier.Hex `json:"user_id" swaggertype:"string"`
	Name           string         `json:"name"`
	LastName       string         `json:"lastname"`
	Email          string         `json:"email"`
	RoleID         identifier.Hex `json:"fk_rol" swaggertype:"string"`
	SubscriptionID identifier.Hex `json:"fk_subscription" swaggertype:"string"`
}

// Service описывает бизнес-логику администрирования пользователей.
type Service interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	ReadUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, in account.UserUpdate) (*models.User, error)
}

// Handler обслуживает запросы к пользователям.
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

// List godoc
// @Summary Список пользователей
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]User}
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Пользователей нет"
// @Failure 500 {object} response.ErrorResponse
// @Router /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.user.list")

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("error fetching users"))
		return
	}
	if len(users) == 0 {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("no users found"))
		return
	}

	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, fromModel(u))
	}
	render.JSON(w, r, response.OKWithData(out))
}

// Read godoc
// @Summary Получить пользователя
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param id path string true "Идентификатор пользователя (32 hex)"
// @Success 200 {object} response.Response{data=User}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /users/{id} [get]
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.user.read")

	id, ok := pathID(w, r, log)
	if !ok {
		return
	}
	u, err := h.service.ReadUser(r.Context(), id)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(fromModel(u)))
}

// Update godoc
// @Summary Изменить пользователя
// @Description Единственный способ назначить пользователю роль, в том числе admin.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "Идентификатор пользователя (32 hex)"
// @Param request body Request true "Новые данные"
// @Success 200 {object} response.Response{data=User}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /users/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.user.update")

	id, ok := pathID(w, r, log)
	if !ok {
		return
	}
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
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.JSON(w, r, response.ValidationError(verrs))
		} else {
			render.JSON(w, r, response.Error("invalid request"))
		}
		return
	}
	roleID, err := identifier.Parse(req.RoleID)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid fk_rol"))
		return
	}
	subID, err := identifier.Parse(req.SubscriptionID)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid fk_subscription"))
		return
	}

	u, err := h.service.UpdateUser(r.Context(), id, account.UserUpdate{
		Name:           req.Name,
		LastName:       req.LastName,
		Email:          req.Email,
		Password:       req.Password,
		RoleID:         roleID,
		SubscriptionID: subID,
	})
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	log.Info("user updated", sl.ID("user_id", id))
	render.JSON(w, r, response.OKWithMessage("user updated", fromModel(u)))
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, account.ErrUserNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
	case errors.Is(err, account.ErrEmailTaken):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(account.ErrEmailTaken.Error()))
	case errors.Is(err, account.ErrRoleNotFound):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("role ID does not exist"))
	case errors.Is(err, account.ErrSubscriptionNotFound):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("subscription ID does not exist"))
	default:
		log.Error("user request failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
	}
}

func pathID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	id, err := identifier.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Info("invalid user id", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user_id format"))
		return uuid.Nil, false
	}
	return id, true
}

func fromModel(u *models.User) User {
	return User{
		ID:             identifier.Hex(u.ID),
		Name:           u.Name,
		LastName:       u.LastName,
		Email:          u.Email,
		RoleID:         identifier.Hex(u.RoleID),
		SubscriptionID: identifier.Hex(u.SubscriptionID),
	}
}
