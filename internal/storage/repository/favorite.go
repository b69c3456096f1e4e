package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/20213tn048/sispe-backend/internal/models"
)

// FindUser ищет пользователя по идентификатору.
func (s *Storage) FindUser(ctx context.Context, id uuid.UUID) (*models.User, bool, error) {
	const op = "storage.FindUser"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id, name, lastname, email, password, fk_rol, fk_subscription
			  FROM users
			  WHERE user_id = $1`
	var u models.User
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.LastName, &u.Email,
		&u.PasswordHash, &u.RoleID, &u.SubscriptionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &u, true, nil
}

// FindActiveFilm ищет фильм со статусом active. Неактивный фильм считается отсутствующим.
func (s *Storage) FindActiveFilm(ctx context.Context, id uuid.UUID) (*models.Film, bool, error) {
	const op = "storage.FindActiveFilm"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT film_id, title, description, length::float8, status, fk_category
			  FROM films
			  WHERE film_id = $1 AND status = $2`
	var f models.Film
	err := s.DB.QueryRowContext(ctx, query, id, string(models.FilmStatusActive)).Scan(&f.ID, &f.Title,
		&f.Description, &f.Length, &f.Status, &f.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &f, true, nil
}

// SubscriptionIsValid сообщает, содержит ли интервал подписки пользователя момент now.
func (s *Storage) SubscriptionIsValid(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	const op = "storage.SubscriptionIsValid"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			      SELECT 1
			      FROM users u
			      JOIN subscriptions s ON s.subscription_id = u.fk_subscription
			      WHERE u.user_id = $1
			        AND s.start_date <= $2
			        AND s.end_date >= $2
			  )`
	var valid bool
	if err := s.DB.QueryRowContext(ctx, query, userID, now).Scan(&valid); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return valid, nil
}

// FindFavorite ищет запись избранного для пары пользователь-фильм.
func (s *Storage) FindFavorite(ctx context.Context, userID, filmID uuid.UUID) (*models.Favorite, bool, error) {
	const op = "storage.FindFavorite"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT favorite_id, fk_user, fk_film
			  FROM favorites
			  WHERE fk_user = $1 AND fk_film = $2`
	var f models.Favorite
	err := s.DB.QueryRowContext(ctx, query, userID, filmID).Scan(&f.ID, &f.UserID, &f.FilmID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &f, true, nil
}

// CreateFavorite вставляет запись избранного одной командой.
// Нарушение уникальности пары возвращается как ErrFavoriteExists.
func (s *Storage) CreateFavorite(ctx context.Context, fav models.Favorite) error {
	const op = "storage.CreateFavorite"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO favorites (favorite_id, fk_user, fk_film)
			  VALUES ($1, $2, $3)`
	if _, err := s.DB.ExecContext(ctx, query, fav.ID, fav.UserID, fav.FilmID); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrFavoriteExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveFavorite удаляет запись избранного и возвращает количество удалённых строк.
func (s *Storage) RemoveFavorite(ctx context.Context, userID, filmID uuid.UUID) (int, error) {
	const op = "storage.RemoveFavorite"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM favorites WHERE fk_user = $1 AND fk_film = $2`
	result, err := s.DB.ExecContext(ctx, query, userID, filmID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListFavorites возвращает все записи избранного пользователя.
func (s *Storage) ListFavorites(ctx context.Context, userID uuid.UUID) ([]*models.Favorite, error) {
	const op = "storage.ListFavorites"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT favorite_id, fk_user, fk_film
			  FROM favorites
			  WHERE fk_user = $1
			  ORDER BY favorite_id`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Favorite, 0)
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.FilmID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
