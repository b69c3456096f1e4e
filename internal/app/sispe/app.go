// Package sispe собирает HTTP-приложение: хранилище, миграции, кеш, брокер событий,
// сервисы и маршруты.
package sispe

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/20213tn048/sispe-backend/internal/cache"
	"github.com/20213tn048/sispe-backend/internal/config"
	"github.com/20213tn048/sispe-backend/internal/events"
	"github.com/20213tn048/sispe-backend/internal/lib/jwt"
	"github.com/20213tn048/sispe-backend/internal/lib/sl"
	"github.com/20213tn048/sispe-backend/internal/migrations"
	"github.com/20213tn048/sispe-backend/internal/services/account"
	"github.com/20213tn048/sispe-backend/internal/services/catalog"
	"github.com/20213tn048/sispe-backend/internal/services/favorite"
	"github.com/20213tn048/sispe-backend/internal/services/rating"
	"github.com/20213tn048/sispe-backend/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	broker *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{logger: logger, db: db}

	var catalogCache catalog.Cache = cache.Noop{}
	if cfg.RedisConnection.Addr != "" {
		app.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, err
		}
		catalogCache = app.cache
	} else {
		logger.Warn("redis address is empty, catalog cache disabled")
	}

	var publisher favorite.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		app.broker, err = events.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			app.close()
			return nil, err
		}
		ch, err := events.SetupChannel(app.broker, cfg.RabbitMQ.Exchange)
		if err != nil {
			app.close()
			return nil, err
		}
		publisher = events.NewPublisher(ch, cfg.RabbitMQ.Exchange)

		if cfg.RabbitMQ.ConsumeAudit {
			auditCh, err := app.broker.Channel()
			if err != nil {
				app.close()
				return nil, err
			}
			if err = events.Consume(ctx, auditCh, events.AuditQueue, logger, events.AuditLogger(logger)); err != nil {
				app.close()
				return nil, err
			}
		}
	} else {
		logger.Warn("rabbitmq url is empty, favorite events disabled")
	}

	tokens := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Favorites: favorite.New(db, logger, favorite.WithPublisher(publisher)),
		Catalog:   catalog.New(db, catalogCache, cfg.RedisConnection.TTL, logger),
		Ratings:   rating.New(db, logger),
		Accounts:  account.New(db, tokens, logger, nil),
		Tokens:    tokens,
		Health:    db,
	}, cfg.RateLimit)

	app.server = &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis client", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
