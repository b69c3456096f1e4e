// Package favorite реализует сценарии работы с избранным: добавление, удаление и список.
//
// Порядок проверок фиксирован и прерывается на первой неудаче:
// идентификаторы, пользователь, подписка, фильм, запись избранного.
package favorite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/20213tn048/sispe-backend/internal/events"
	"github.com/20213tn048/sispe-backend/internal/lib/identifier"
	"github.com/20213tn048/sispe-backend/internal/lib/sl"
	"github.com/20213tn048/sispe-backend/internal/metrics"
	"github.com/20213tn048/sispe-backend/internal/models"
	"github.com/20213tn048/sispe-backend/internal/storage/repository"
)

var (
	ErrMissingField          = errors.New("missing required field")
	ErrUserNotFound          = errors.New("user not found")
	ErrSubscriptionInvalid   = errors.New("subscription is not valid")
	ErrFilmNotFound          = errors.New("film not found")
	ErrFavoriteAlreadyExists = errors.New("favorite already exists")
	ErrFavoriteNotFound      = errors.New("favorite not found")
)

// StorageError оборачивает отказ хранилища. Подробности не должны попадать в ответ клиенту.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage failure: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Repository описывает операции хранилища, нужные сценариям избранного.
type Repository interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, bool, error)
	FindActiveFilm(ctx context.Context, id uuid.UUID) (*models.Film, bool, error)
	SubscriptionIsValid(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error)
	FindFavorite(ctx context.Context, userID, filmID uuid.UUID) (*models.Favorite, bool, error)
	CreateFavorite(ctx context.Context, fav models.Favorite) error
	RemoveFavorite(ctx context.Context, userID, filmID uuid.UUID) (int, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]*models.Favorite, error)
}

// Publisher отправляет доменные события.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Event тело события об изменении избранного.
type Event struct {
	FavoriteID identifier.Hex `json:"favorite_id"`
	UserID     identifier.Hex `json:"fk_user"`
	FilmID     identifier.Hex `json:"fk_film"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Service реализует сценарии избранного.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithPublisher включает публикацию событий.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// New создает сервис избранного.
func New(repo Repository, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: events.NoopPublisher{},
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddFavorite добавляет активный фильм в избранное пользователя с действующей подпиской.
func (s *Service) AddFavorite(ctx context.Context, userHex, filmHex string) (fav *models.Favorite, err error) {
	const op = "favorite.AddFavorite"
	defer func() { observe("add", err) }()

	userID, filmID, err := decodePair(userHex, filmHex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkUser(ctx, op, userID, true); err != nil {
		return nil, err
	}

	_, found, err := s.repo.FindActiveFilm(ctx, filmID)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, ErrFilmNotFound)
	}

	_, found, err = s.repo.FindFavorite(ctx, userID, filmID)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	if found {
		return nil, fmt.Errorf("%s: %w", op, ErrFavoriteAlreadyExists)
	}

	fav = &models.Favorite{
		ID:     identifier.New(),
		UserID: userID,
		FilmID: filmID,
	}
	if err := s.repo.CreateFavorite(ctx, *fav); err != nil {
		if errors.Is(err, repository.ErrFavoriteExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrFavoriteAlreadyExists)
		}
		return nil, &StorageError{Op: op, Err: err}
	}

	s.log.Info("favorite added",
		sl.ID("favorite_id", fav.ID),
		sl.ID("fk_user", userID),
		sl.ID("fk_film", filmID),
	)
	s.publish(ctx, events.FavoriteAdded, fav)
	return fav, nil
}

// RemoveFavorite удаляет фильм из избранного пользователя с действующей подпиской.
func (s *Service) RemoveFavorite(ctx context.Context, userHex, filmHex string) (err error) {
	const op = "favorite.RemoveFavorite"
	defer func() { observe("remove", err) }()

	userID, filmID, err := decodePair(userHex, filmHex)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkUser(ctx, op, userID, true); err != nil {
		return err
	}

	fav, found, err := s.repo.FindFavorite(ctx, userID, filmID)
	if err != nil {
		return &StorageError{Op: op, Err: err}
	}
	if !found {
		return fmt.Errorf("%s: %w", op, ErrFavoriteNotFound)
	}

	removed, err := s.repo.RemoveFavorite(ctx, userID, filmID)
	if err != nil {
		return &StorageError{Op: op, Err: err}
	}
	if removed == 0 {
		return fmt.Errorf("%s: %w", op, ErrFavoriteNotFound)
	}

	s.log.Info("favorite removed",
		sl.ID("fk_user", userID),
		sl.ID("fk_film", filmID),
	)
	s.publish(ctx, events.FavoriteRemoved, fav)
	return nil
}

// ListFavorites возвращает избранное пользователя. Пустой список не является ошибкой.
func (s *Service) ListFavorites(ctx context.Context, userHex string) (favs []*models.Favorite, err error) {
	const op = "favorite.ListFavorites"
	defer func() { observe("list", err) }()

	if userHex == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingField)
	}
	userID, err := identifier.Parse(userHex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkUser(ctx, op, userID, false); err != nil {
		return nil, err
	}

	favs, err = s.repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	return favs, nil
}

func decodePair(userHex, filmHex string) (uuid.UUID, uuid.UUID, error) {
	if userHex == "" || filmHex == "" {
		return uuid.Nil, uuid.Nil, ErrMissingField
	}
	userID, err := identifier.Parse(userHex)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	filmID, err := identifier.Parse(filmHex)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, filmID, nil
}

// checkUser проверяет существование пользователя и, если нужно, действие его подписки.
func (s *Service) checkUser(ctx context.Context, op string, userID uuid.UUID, withSubscription bool) error {
	_, found, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		return &StorageError{Op: op, Err: err}
	}
	if !found {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if !withSubscription {
		return nil
	}

	valid, err := s.repo.SubscriptionIsValid(ctx, userID, s.now())
	if err != nil {
		return &StorageError{Op: op, Err: err}
	}
	if !valid {
		return fmt.Errorf("%s: %w", op, ErrSubscriptionInvalid)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, routingKey string, fav *models.Favorite) {
	event := Event{
		FavoriteID: identifier.Hex(fav.ID),
		UserID:     identifier.Hex(fav.UserID),
		FilmID:     identifier.Hex(fav.FilmID),
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		s.log.Warn("failed to publish favorite event",
			slog.String("routing_key", routingKey),
			sl.Err(err),
		)
	}
}

func observe(operation string, err error) {
	outcome := metrics.OutcomeSuccess
	var storageErr *StorageError
	switch {
	case errors.As(err, &storageErr):
		outcome = metrics.OutcomeError
	case err != nil:
		outcome = metrics.OutcomeRejected
	}
	metrics.FavoriteOperations.WithLabelValues(operation, outcome).Inc()
}
