package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/20213tn048/sispe-backend/internal/models"
)

// CreateSubscription сохраняет новую подписку.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (subscription_id, start_date, end_date, transaction)
			  VALUES ($1, $2, $3, $4)`
	if _, err := s.DB.ExecContext(ctx, query, sub.ID, sub.StartDate, sub.EndDate, sub.Transaction); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindSubscription ищет подписку по идентификатору.
func (s *Storage) FindSubscription(ctx context.Context, id uuid.UUID) (*models.Subscription, bool, error) {
	const op = "storage.FindSubscription"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT subscription_id, start_date, end_date, transaction
			  FROM subscriptions
			  WHERE subscription_id = $1`
	var sub models.Subscription
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&sub.ID, &sub.StartDate, &sub.EndDate, &sub.Transaction)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, true, nil
}
