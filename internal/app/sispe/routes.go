package sispe

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-документации.
	_ "github.com/20213tn048/sispe-backend/docs"
	"github.com/20213tn048/sispe-backend/internal/config"
	"github.com/20213tn048/sispe-backend/internal/http/handlers/auth/login"
	"github.com/20213tn048/sispe-backend/internal/http/handlers/auth/register"
	"github.com/20213tn048/sispe-backend/internal/http/handlers/category"
	"github.com/20213tn048/sispe-backend/internal/http/handlers/favorite/add"
	"github.com/20213tn048/sispe-backend/internal/http/handlers/favorite/list"
	"github.com/20213tn048/sispe-backend/internal/http/handlers/favorite/remove"
	"github.com/20213tn048/sispe-backend/internal/http/handlers/film"
	"github.com/20213tn048/sispe-backend/internal/http/handlers/health"
	ratingcreate "github.com/20213tn048/sispe-backend/internal/http/handlers/rating/create"
	ratingread "github.com/20213tn048/sispe-backend/internal/http/handlers/rating/read"
	ratingremove "github.com/20213tn048/sispe-backend/internal/http/handlers/rating/remove"
	ratingupdate "github.com/20213tn048/sispe-backend/internal/http/handlers/rating/update"
	subscriptioncreate "github.com/20213tn048/sispe-backend/internal/http/handlers/subscription/create"
	subscriptionread "github.com/20213tn048/sispe-backend/internal/http/handlers/subscription/read"
	"github.com/20213tn048/sispe-backend/internal/http/handlers/user"
	"github.com/20213tn048/sispe-backend/internal/http/middlewarectx"
	"github.com/20213tn048/sispe-backend/internal/models"
	"github.com/20213tn048/sispe-backend/internal/services/account"
	"github.com/20213tn048/sispe-backend/internal/services/catalog"
	"github.com/20213tn048/sispe-backend/internal/services/favorite"
	"github.com/20213tn048/sispe-backend/internal/services/rating"
)

// Services набор зависимостей HTTP-слоя.
type Services struct {
	Favorites *favorite.Service
	Catalog   *catalog.Service
	Ratings   *rating.Service
	Accounts  *account.Service
	Tokens    middlewarectx.TokenParser
	Health    health.Checker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services, limit config.RateLimit) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
		middlewarectx.RateLimitMiddleware(limit.RPS, limit.Burst, logger),
	)

	categories := category.New(logger, s.Catalog)
	films := film.New(logger, s.Catalog)
	favorites := list.New(logger, s.Favorites)
	users := user.New(logger, s.Accounts)

	r.Get("/health", health.New(logger, s.Health).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", login.New(logger, s.Accounts).ServeHTTP)
		r.Post("/users", register.New(logger, s.Accounts).ServeHTTP)
		r.Post("/subscriptions", subscriptioncreate.New(logger, s.Accounts).ServeHTTP)
		r.Get("/subscriptions/{id}", subscriptionread.New(logger, s.Accounts).ServeHTTP)

		r.Post("/favorites", add.New(logger, s.Favorites).ServeHTTP)
		r.Delete("/favorites", remove.New(logger, s.Favorites).ServeHTTP)
		r.Post("/favorites/list", favorites.ServeHTTP)
		r.Get("/users/{fk_user}/favorites", favorites.ByPath)

		r.Get("/categories", categories.List)
		r.Get("/categories/{id}", categories.Read)
		r.Get("/films", films.List)
		r.Get("/films/{id}", films.Read)

		r.Post("/ratings", ratingcreate.New(logger, s.Ratings).ServeHTTP)
		r.Get("/ratings/{id}", ratingread.New(logger, s.Ratings).ServeHTTP)
		r.Put("/ratings/{id}", ratingupdate.New(logger, s.Ratings).ServeHTTP)
		r.Delete("/ratings/{id}", ratingremove.New(logger, s.Ratings).ServeHTTP)

		// Изменение каталога и учетных записей только для администраторов
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Tokens, logger))
			r.Use(middlewarectx.RequireRole(models.RoleAdmin, logger))
			r.Post("/categories", categories.Create)
			r.Put("/categories/{id}", categories.Update)
			r.Post("/films", films.Create)
			r.Put("/films/{id}", films.Update)
			r.Delete("/films/{id}", films.Remove)
			r.Get("/users", users.List)
			r.Get("/users/{id}", users.Read)
			r.Put("/users/{id}", users.Update)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
