package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/20213tn048/sispe-backend/internal/models"
)

// CreateUser сохраняет нового пользователя.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (user_id, name, lastname, email, password, fk_rol, fk_subscription)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.DB.ExecContext(ctx, query, user.ID, user.Name, user.LastName, user.Email,
		user.PasswordHash, user.RoleID, user.SubscriptionID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("%s: %w", op, ErrEmailTaken)
		case isForeignKeyViolation(err):
			return fmt.Errorf("%s: %w", op, ErrReferenceNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserByEmail возвращает пользователя вместе с названием его роли.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.Credentials, bool, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.user_id, u.name, u.lastname, u.email, u.password, u.fk_rol,
			      u.fk_subscription, r.name
			  FROM users u
			  JOIN roles r ON r.rol_id = u.fk_rol
			  WHERE u.email = $1`
	var c models.Credentials
	err := s.DB.QueryRowContext(ctx, query, email).Scan(&c.ID, &c.Name, &c.LastName, &c.Email,
		&c.PasswordHash, &c.RoleID, &c.SubscriptionID, &c.RoleName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &c, true, nil
}

// FindRole ищет роль по идентификатору.
func (s *Storage) FindRole(ctx context.Context, id uuid.UUID) (*models.Role, bool, error) {
	const op = "storage.FindRole"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var r models.Role
	err := s.DB.QueryRowContext(ctx, `SELECT rol_id, name FROM roles WHERE rol_id = $1`, id).Scan(&r.ID, &r.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &r, true, nil
}

// FindRoleByName ищет роль по названию.
func (s *Storage) FindRoleByName(ctx context.Context, name string) (*models.Role, bool, error) {
	const op = "storage.FindRoleByName"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var r models.Role
	err := s.DB.QueryRowContext(ctx, `SELECT rol_id, name FROM roles WHERE name = $1`, name).Scan(&r.ID, &r.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &r, true, nil
}

// ListUsers возвращает всех пользователей, отсортированных по email.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id, name, lastname, email, password, fk_rol, fk_subscription
			  FROM users
			  ORDER BY email`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.LastName, &u.Email,
			&u.PasswordHash, &u.RoleID, &u.SubscriptionID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUser перезаписывает данные пользователя и возвращает число измененных строк.
func (s *Storage) UpdateUser(ctx context.Context, user models.User) (int, error) {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET name = $1, lastname = $2, email = $3, password = $4, fk_rol = $5, fk_subscription = $6
			  WHERE user_id = $7`
	result, err := s.DB.ExecContext(ctx, query, user.Name, user.LastName, user.Email,
		user.PasswordHash, user.RoleID, user.SubscriptionID, user.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return 0, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		case isForeignKeyViolation(err):
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
