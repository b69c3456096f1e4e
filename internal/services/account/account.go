// Package account реализует оформление подписок, регистрацию и администрирование
// пользователей и вход в систему.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/20213tn048/sispe-backend/internal/lib/identifier"
	"github.com/20213tn048/sispe-backend/internal/lib/password"
	"github.com/20213tn048/sispe-backend/internal/lib/sl"
	"github.com/20213tn048/sispe-backend/internal/models"
	"github.com/20213tn048/sispe-backend/internal/storage/repository"
)

var (
	ErrStartInPast          = errors.New("the start date must not be in the past")
	ErrInvalidPeriod        = errors.New("the start date must be before the end date")
	ErrEmailTaken           = errors.New("email already registered")
	ErrRoleNotFound         = errors.New("role not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
)

// Repository определяет методы хранилища для пользователей и подписок.
type Repository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) error
	FindSubscription(ctx context.Context, id uuid.UUID) (*models.Subscription, bool, error)
	FindRole(ctx context.Context, id uuid.UUID) (*models.Role, bool, error)
	FindRoleByName(ctx context.Context, name string) (*models.Role, bool, error)
	CreateUser(ctx context.Context, user models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.Credentials, bool, error)
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, bool, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user models.User) (int, error)
}

// TokenMaker выпускает токены доступа.
type TokenMaker interface {
	GenerateToken(email, role, userUID string) (string, error)
}

// NewUser данные для регистрации пользователя. Роль не выбирается клиентом.
type NewUser struct {
	Name           string
	LastName       string
	Email          string
	Password       string
	SubscriptionID uuid.UUID
}

// UserUpdate новые данные пользователя. Пустой Password оставляет прежний хэш.
type UserUpdate struct {
	Name           string
	LastName       string
	Email          string
	Password       string
	RoleID         uuid.UUID
	SubscriptionID uuid.UUID
}

// Service реализует бизнес-логику учетных записей.
type Service struct {
	repo   Repository
	tokens TokenMaker
	log    *slog.Logger
	now    func() time.Time
}

// New создает сервис учетных записей. now может быть nil, тогда используется time.Now.
func New(repo Repository, tokens TokenMaker, log *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   repo,
		tokens: tokens,
		log:    log,
		now:    now,
	}
}

// CreateSubscription оформляет подписку на период [start, end].
func (s *Service) CreateSubscription(ctx context.Context, start, end time.Time, transaction string) (*models.Subscription, error) {
	const op = "account.CreateSubscription"
	if start.Before(s.now()) {
		return nil, fmt.Errorf("%s: %w", op, ErrStartInPast)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidPeriod)
	}

	sub := models.Subscription{
		ID:          identifier.New(),
		StartDate:   start,
		EndDate:     end,
		Transaction: transaction,
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription created", sl.ID("subscription_id", sub.ID))
	return &sub, nil
}

// ReadSubscription возвращает подписку по идентификатору.
func (s *Service) ReadSubscription(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	const op = "account.ReadSubscription"
	sub, found, err := s.repo.FindSubscription(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	return sub, nil
}

// CreateUser регистрирует пользователя с ролью user. Пароль сохраняется только в виде bcrypt-хэша.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	const op = "account.CreateUser"

	role, found, err := s.repo.FindRoleByName(ctx, models.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: role %q is not seeded", op, models.RoleUser)
	}
	if err := s.checkSubscription(ctx, in.SubscriptionID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		ID:             identifier.New(),
		Name:           in.Name,
		LastName:       in.LastName,
		Email:          strings.ToLower(in.Email),
		PasswordHash:   hash,
		RoleID:         role.ID,
		SubscriptionID: in.SubscriptionID,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user created", sl.ID("user_id", user.ID))
	return &user, nil
}

// ListUsers возвращает всех пользователей.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "account.ListUsers"
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// ReadUser возвращает пользователя по идентификатору.
func (s *Service) ReadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "account.ReadUser"
	user, found, err := s.repo.FindUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return user, nil
}

// UpdateUser перезаписывает данные пользователя, включая роль.
// Вызывается только из маршрутов администратора.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, in UserUpdate) (*models.User, error) {
	const op = "account.UpdateUser"

	current, found, err := s.repo.FindUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	_, found, err = s.repo.FindRole(ctx, in.RoleID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, ErrRoleNotFound)
	}
	if err := s.checkSubscription(ctx, in.SubscriptionID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash := current.PasswordHash
	if in.Password != "" {
		if hash, err = password.GetHash(in.Password); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	user := models.User{
		ID:             id,
		Name:           in.Name,
		LastName:       in.LastName,
		Email:          strings.ToLower(in.Email),
		PasswordHash:   hash,
		RoleID:         in.RoleID,
		SubscriptionID: in.SubscriptionID,
	}
	n, err := s.repo.UpdateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	s.log.Info("user updated", sl.ID("user_id", id))
	return &user, nil
}

func (s *Service) checkSubscription(ctx context.Context, id uuid.UUID) error {
	_, found, err := s.repo.FindSubscription(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrSubscriptionNotFound
	}
	return nil
}

// Login проверяет пароль и выпускает JWT с email, ролью и идентификатором пользователя.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, *models.Credentials, error) {
	const op = "account.Login"
	creds, found, err := s.repo.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.CompareHash(creds.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.tokens.GenerateToken(creds.Email, creds.RoleName, identifier.Format(creds.ID))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, creds, nil
}
