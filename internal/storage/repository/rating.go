package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/20213tn048/sispe-backend/internal/models"
)

// CreateRating сохраняет оценку фильма.
func (s *Storage) CreateRating(ctx context.Context, r models.Rating) error {
	const op = "storage.CreateRating"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO ratings (rating_id, grade, comment, fk_user, fk_film)
			  VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.DB.ExecContext(ctx, query, r.ID, r.Grade, r.Comment, r.UserID, r.FilmID); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrReferenceNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReadRating возвращает оценку по идентификатору.
func (s *Storage) ReadRating(ctx context.Context, id uuid.UUID) (*models.Rating, bool, error) {
	const op = "storage.ReadRating"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT rating_id, grade::float8, comment, fk_user, fk_film
			  FROM ratings
			  WHERE rating_id = $1`
	var (
		r       models.Rating
		comment sql.NullString
	)
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&r.ID, &r.Grade, &comment, &r.UserID, &r.FilmID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if comment.Valid {
		r.Comment = &comment.String
	}
	return &r, true, nil
}

// UpdateRating обновляет оценку и возвращает количество изменённых строк.
func (s *Storage) UpdateRating(ctx context.Context, r models.Rating) (int, error) {
	const op = "storage.UpdateRating"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE ratings
			  SET grade = $1, comment = $2, fk_user = $3, fk_film = $4
			  WHERE rating_id = $5`
	result, err := s.DB.ExecContext(ctx, query, r.Grade, r.Comment, r.UserID, r.FilmID, r.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrReferenceNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveRating удаляет оценку и возвращает количество удалённых строк.
func (s *Storage) RemoveRating(ctx context.Context, id uuid.UUID) (int, error) {
	const op = "storage.RemoveRating"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM ratings WHERE rating_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
