// Package register реализует HTTP-обработчик регистрации пользователя.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/20213tn048/sispe-backend/internal/http/response"
	"github.com/20213tn048/sispe-backend/internal/lib/identifier"
	"github.com/20213tn048/sispe-backend/internal/lib/sl"
	"github.com/20213tn048/sispe-backend/internal/models"
	"github.com/20213tn048/sispe-backend/internal/services/account"
)

// Request входные данные для регистрации. Роль назначается сервером.
type Request struct {
	Name           string `json:"name" validate:"required,max=45" example:"Ana"`
	LastName       string `json:"lastname" validate:"required,max=45" example:"Lopez"`
	Email          string `json:"email" validate:"required,email,max=60" example:"ana@sispe.mx"`
	Password       string `json:"password" validate:"required,min=6" example:"secret123"`
	SubscriptionID string `json:"fk_subscription" validate:"required,hexadecimal,len=32"`
}

// User зарегистрированный пользователь в ответе. Хэш пароля не возвращается.
type User struct {
	ID             identifier.Hex `json:"user_id" swaggertype:"string"`
	Name           string         `json:"name"`
	LastName       string         `json:"lastname"`
	Email          string         `json:"email"`
	RoleID         identifier.Hex `json:"fk_rol" swaggertype:"string"`
	SubscriptionID identifier.Hex `json:"fk_subscription" swaggertype:"string"`
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	CreateUser(ctx context.Context, in account.NewUser) (*models.User, error)
}

// Handler обрабатывает запросы на регистрацию.
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
// @Summary Регистрация пользователя
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} response.Response{data=User}
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации, занятый email или несуществующая подписка"
// @Failure 500 {object} response.ErrorResponse
// @Router /users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
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

	subID, err := identifier.Parse(req.SubscriptionID)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid fk_subscription"))
		return
	}

	user, err := h.service.CreateUser(r.Context(), account.NewUser{
		Name:           req.Name,
		LastName:       req.LastName,
		Email:          req.Email,
		Password:       req.Password,
		SubscriptionID: subID,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrEmailTaken),
			errors.Is(err, account.ErrSubscriptionNotFound):
			log.Info("registration rejected", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(rejection(err)))
		default:
			log.Error("registration failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to register user"))
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithMessage("user created successfully", User{
		ID:             identifier.Hex(user.ID),
		Name:           user.Name,
		LastName:       user.LastName,
		Email:          user.Email,
		RoleID:         identifier.Hex(user.RoleID),
		SubscriptionID: identifier.Hex(user.SubscriptionID),
	}))
}

func rejection(err error) string {
	if errors.Is(err, account.ErrEmailTaken) {
		return account.ErrEmailTaken.Error()
	}
	return "subscription ID does not exist"
}
