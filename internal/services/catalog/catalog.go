// Package catalog содержит бизнес-логику каталога: категории и фильмы с кешированием чтения.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/20213tn048/sispe-backend/internal/lib/identifier"
	"github.com/20213tn048/sispe-backend/internal/lib/sl"
	"github.com/20213tn048/sispe-backend/internal/models"
	"github.com/20213tn048/sispe-backend/internal/storage/repository"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrFilmNotFound     = errors.New("film not found")
)

// Ключи кеша.
const (
	keyCategories = "categories:all"
	keyFilms      = "films:all"
	keyFilmPrefix = "film:"
)

// DefaultTTL время жизни записей кеша.
const DefaultTTL = time.Hour

// Repository определяет методы хранилища для работы с каталогом.
type Repository interface {
	CreateCategory(ctx context.Context, c models.Category) error
	UpdateCategory(ctx context.Context, c models.Category) (int, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, bool, error)
	CreateFilm(ctx context.Context, f models.Film) error
	UpdateFilm(ctx context.Context, f models.Film) (int, error)
	RemoveFilm(ctx context.Context, id uuid.UUID) (int, error)
	ReadFilm(ctx context.Context, id uuid.UUID) (*models.Film, bool, error)
	ListFilms(ctx context.Context) ([]*models.Film, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значения из кеша по ключам.
	Invalidate(ctx context.Context, keys ...string) error
}

// Service реализует операции каталога.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// New создает сервис каталога. Нулевой ttl заменяется на DefaultTTL.
func New(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func filmKey(id uuid.UUID) string {
	return keyFilmPrefix + identifier.Format(id)
}

// ===== CATEGORIES =====

// CreateCategory создает категорию с серверным идентификатором.
func (s *Service) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	const op = "catalog.CreateCategory"
	c := models.Category{ID: identifier.New(), Name: name}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, keyCategories)
	return &c, nil
}

// UpdateCategory переименовывает категорию.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, name string) error {
	const op = "catalog.UpdateCategory"
	n, err := s.repo.UpdateCategory(ctx, models.Category{ID: id, Name: name})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrCategoryNotFound)
	}
	s.invalidate(ctx, keyCategories)
	return nil
}

// ReadCategory возвращает категорию по идентификатору.
func (s *Service) ReadCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	const op = "catalog.ReadCategory"
	c, found, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, ErrCategoryNotFound)
	}
	return c, nil
}

// ListCategories возвращает все категории, используя кеш.
func (s *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	const op = "catalog.ListCategories"
	var result []*models.Category
	if s.fromCache(ctx, keyCategories, &result) {
		return result, nil
	}
	result, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.toCache(ctx, keyCategories, result)
	return result, nil
}

// ===== FILMS =====

// CreateFilm сохраняет фильм с серверным идентификатором. Категория должна существовать.
func (s *Service) CreateFilm(ctx context.Context, f models.Film) (*models.Film, error) {
	const op = "catalog.CreateFilm"
	f.ID = identifier.New()
	if err := s.repo.CreateFilm(ctx, f); err != nil {
		if errors.Is(err, repository.ErrReferenceNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrCategoryNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, keyFilms)
	return &f, nil
}

// UpdateFilm заменяет данные фильма.
func (s *Service) UpdateFilm(ctx context.Context, f models.Film) error {
	const op = "catalog.UpdateFilm"
	n, err := s.repo.UpdateFilm(ctx, f)
	if err != nil {
		if errors.Is(err, repository.ErrReferenceNotFound) {
			return fmt.Errorf("%s: %w", op, ErrCategoryNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrFilmNotFound)
	}
	s.invalidate(ctx, filmKey(f.ID), keyFilms)
	return nil
}

// RemoveFilm удаляет фильм вместе с зависимыми записями избранного и оценками.
func (s *Service) RemoveFilm(ctx context.Context, id uuid.UUID) error {
	const op = "catalog.RemoveFilm"
	n, err := s.repo.RemoveFilm(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrFilmNotFound)
	}
	s.invalidate(ctx, filmKey(id), keyFilms)
	return nil
}

// ReadFilm возвращает фильм по идентификатору, используя кеш.
func (s *Service) ReadFilm(ctx context.Context, id uuid.UUID) (*models.Film, error) {
	const op = "catalog.ReadFilm"
	key := filmKey(id)
	var cached models.Film
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}
	f, found, err := s.repo.ReadFilm(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, ErrFilmNotFound)
	}
	s.toCache(ctx, key, f)
	return f, nil
}

// ListFilms возвращает все фильмы, используя кеш.
func (s *Service) ListFilms(ctx context.Context) ([]*models.Film, error) {
	const op = "catalog.ListFilms"
	var result []*models.Film
	if s.fromCache(ctx, keyFilms, &result) {
		return result, nil
	}
	result, err := s.repo.ListFilms(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.toCache(ctx, keyFilms, result)
	return result, nil
}

// Ошибки кеша только логируются: источник истины всегда база данных.

func (s *Service) fromCache(ctx context.Context, key string, result any) bool {
	found, err := s.cache.Get(ctx, key, result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", key), sl.Err(err))
		return false
	}
	return found
}

func (s *Service) toCache(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", key), sl.Err(err))
	}
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to remove from cache", slog.Any("keys", keys), sl.Err(err))
	}
}
