package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/20213tn048/sispe-backend/internal/models"
)

// ===== CATEGORY METHODS =====

// CreateCategory сохраняет новую категорию.
func (s *Storage) CreateCategory(ctx context.Context, c models.Category) error {
	const op = "storage.CreateCategory"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO categories (category_id, name) VALUES ($1, $2)`
	if _, err := s.DB.ExecContext(ctx, query, c.ID, c.Name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateCategory переименовывает категорию и возвращает количество изменённых строк.
func (s *Storage) UpdateCategory(ctx context.Context, c models.Category) (int, error) {
	const op = "storage.UpdateCategory"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `UPDATE categories SET name = $1 WHERE category_id = $2`, c.Name, c.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// FindCategory ищет категорию по идентификатору.
func (s *Storage) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, bool, error) {
	const op = "storage.FindCategory"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var c models.Category
	err := s.DB.QueryRowContext(ctx, `SELECT category_id, name FROM categories WHERE category_id = $1`, id).
		Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &c, true, nil
}

// ListCategories возвращает все категории.
func (s *Storage) ListCategories(ctx context.Context) ([]*models.Category, error) {
	const op = "storage.ListCategories"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT category_id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ===== FILM METHODS =====

const filmColumns = `film_id, title, description, length::float8, status, fk_category`

func scanFilm(row interface{ Scan(dest ...any) error }) (*models.Film, error) {
	var f models.Film
	if err := row.Scan(&f.ID, &f.Title, &f.Description, &f.Length, &f.Status, &f.CategoryID); err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFilm сохраняет новый фильм.
func (s *Storage) CreateFilm(ctx context.Context, f models.Film) error {
	const op = "storage.CreateFilm"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO films (film_id, title, description, length, status, fk_category)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query, f.ID, f.Title, f.Description, f.Length, string(f.Status), f.CategoryID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrReferenceNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateFilm обновляет фильм и возвращает количество изменённых строк.
func (s *Storage) UpdateFilm(ctx context.Context, f models.Film) (int, error) {
	const op = "storage.UpdateFilm"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE films
			  SET title = $1, description = $2, length = $3, status = $4, fk_category = $5
			  WHERE film_id = $6`
	result, err := s.DB.ExecContext(ctx, query, f.Title, f.Description, f.Length, string(f.Status),
		f.CategoryID, f.ID)
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

// RemoveFilm удаляет фильм и возвращает количество удалённых строк.
// Записи избранного и оценки удаляются каскадно.
func (s *Storage) RemoveFilm(ctx context.Context, id uuid.UUID) (int, error) {
	const op = "storage.RemoveFilm"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM films WHERE film_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ReadFilm возвращает фильм по идентификатору независимо от статуса.
func (s *Storage) ReadFilm(ctx context.Context, id uuid.UUID) (*models.Film, bool, error) {
	const op = "storage.ReadFilm"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	f, err := scanFilm(s.DB.QueryRowContext(ctx, `SELECT `+filmColumns+` FROM films WHERE film_id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return f, true, nil
}

// ListFilms возвращает все фильмы каталога.
func (s *Storage) ListFilms(ctx context.Context) ([]*models.Film, error) {
	const op = "storage.ListFilms"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+filmColumns+` FROM films ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Film, 0)
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
