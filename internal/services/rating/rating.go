// Package rating содержит бизнес-логику оценок фильмов.
package rating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/20213tn048/sispe-backend/internal/lib/identifier"
	"github.com/20213tn048/sispe-backend/internal/lib/sl"
	"github.com/20213tn048/sispe-backend/internal/models"
	"github.com/20213tn048/sispe-backend/internal/storage/repository"
)

var (
	ErrRatingNotFound    = errors.New("rating not found")
	ErrReferenceNotFound = errors.New("user or film not found")
)

// Repository определяет методы хранилища для работы с оценками.
type Repository interface {
	CreateRating(ctx context.Context, r models.Rating) error
	ReadRating(ctx context.Context, id uuid.UUID) (*models.Rating, bool, error)
	UpdateRating(ctx context.Context, r models.Rating) (int, error)
	RemoveRating(ctx context.Context, id uuid.UUID) (int, error)
}

// Service реализует операции с оценками.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает сервис оценок.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create сохраняет оценку с серверным идентификатором.
func (s *Service) Create(ctx context.Context, r models.Rating) (*models.Rating, error) {
	const op = "rating.Create"
	r.ID = identifier.New()
	if err := s.repo.CreateRating(ctx, r); err != nil {
		return nil, mapErr(op, err)
	}
	s.log.Debug("rating created", sl.ID("rating_id", r.ID), sl.ID("fk_film", r.FilmID))
	return &r, nil
}

// Read возвращает оценку по идентификатору.
func (s *Service) Read(ctx context.Context, id uuid.UUID) (*models.Rating, error) {
	const op = "rating.Read"
	r, found, err := s.repo.ReadRating(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, ErrRatingNotFound)
	}
	return r, nil
}

// Update заменяет оценку целиком.
func (s *Service) Update(ctx context.Context, r models.Rating) error {
	const op = "rating.Update"
	n, err := s.repo.UpdateRating(ctx, r)
	if err != nil {
		return mapErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrRatingNotFound)
	}
	return nil
}

// Remove удаляет оценку.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	const op = "rating.Remove"
	n, err := s.repo.RemoveRating(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrRatingNotFound)
	}
	return nil
}

func mapErr(op string, err error) error {
	if errors.Is(err, repository.ErrReferenceNotFound) {
		return fmt.Errorf("%s: %w", op, ErrReferenceNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
