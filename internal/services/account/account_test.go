package account

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/20213tn048/sispe-backend/internal/lib/identifier"
	"github.com/20213tn048/sispe-backend/internal/lib/jwt"
	"github.com/20213tn048/sispe-backend/internal/lib/password"
	"github.com/20213tn048/sispe-backend/internal/models"
	"github.com/20213tn048/sispe-backend/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *RepoMock) FindSubscription(ctx context.Context, id uuid.UUID) (*models.Subscription, bool, error) {
	args := m.Called(ctx, id)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Bool(1), args.Error(2)
}

func (m *RepoMock) FindRole(ctx context.Context, id uuid.UUID) (*models.Role, bool, error) {
	args := m.Called(ctx, id)
	role, _ := args.Get(0).(*models.Role)
	return role, args.Bool(1), args.Error(2)
}

func (m *RepoMock) FindRoleByName(ctx context.Context, name string) (*models.Role, bool, error) {
	args := m.Called(ctx, name)
	role, _ := args.Get(0).(*models.Role)
	return role, args.Bool(1), args.Error(2)
}

func (m *RepoMock) FindUser(ctx context.Context, id uuid.UUID) (*models.User, bool, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Bool(1), args.Error(2)
}

func (m *RepoMock) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *RepoMock) UpdateUser(ctx context.Context, user models.User) (int, error) {
	args := m.Called(ctx, user)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) CreateUser(ctx context.Context, user models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.Credentials, bool, error) {
	args := m.Called(ctx, email)
	c, _ := args.Get(0).(*models.Credentials)
	return c, args.Bool(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var now = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func TestService_CreateSubscription(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		setup   func(r *RepoMock)
		wantErr error
	}{
		{
			name:  "успешное оформление",
			start: now.Add(time.Hour),
			end:   now.AddDate(0, 1, 0),
			setup: func(r *RepoMock) {
				r.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
					return s.ID != uuid.Nil && s.Transaction == "tx-42"
				})).Return(nil).Once()
			},
		},
		{
			name:    "начало в прошлом",
			start:   now.Add(-time.Minute),
			end:     now.AddDate(0, 1, 0),
			setup:   func(_ *RepoMock) {},
			wantErr: ErrStartInPast,
		},
		{
			name:    "начало не раньше конца",
			start:   now.Add(time.Hour),
			end:     now.Add(time.Hour),
			setup:   func(_ *RepoMock) {},
			wantErr: ErrInvalidPeriod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setup(repo)
			s := New(repo, nil, newNoopLogger(), clock)

			sub, err := s.CreateSubscription(context.Background(), tt.start, tt.end, "tx-42")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, sub)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.start, sub.StartDate)
				assert.Equal(t, tt.end, sub.EndDate)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_CreateUser(t *testing.T) {
	roleID, subID := uuid.New(), uuid.New()
	userRole := &models.Role{ID: roleID, Name: models.RoleUser}
	in := NewUser{
		Name:           "Ana",
		LastName:       "López",
		Email:          "Ana@Sispe.MX",
		Password:       "s3cret",
		SubscriptionID: subID,
	}

	tests := []struct {
		name       string
		setup      func(r *RepoMock)
		wantErr    error
		wantAnyErr bool
	}{
		{
			name: "успешная регистрация с ролью user",
			setup: func(r *RepoMock) {
				r.On("FindRoleByName", mock.Anything, models.RoleUser).Return(userRole, true, nil).Once()
				r.On("FindSubscription", mock.Anything, subID).Return(&models.Subscription{ID: subID}, true, nil).Once()
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Email == "ana@sispe.mx" &&
						u.RoleID == roleID &&
						u.PasswordHash != "s3cret" &&
						password.CompareHash(u.PasswordHash, "s3cret") == nil
				})).Return(nil).Once()
			},
		},
		{
			name: "роль user не заведена",
			setup: func(r *RepoMock) {
				r.On("FindRoleByName", mock.Anything, models.RoleUser).Return(nil, false, nil).Once()
			},
			wantAnyErr: true,
		},
		{
			name: "подписка не найдена",
			setup: func(r *RepoMock) {
				r.On("FindRoleByName", mock.Anything, models.RoleUser).Return(userRole, true, nil).Once()
				r.On("FindSubscription", mock.Anything, subID).Return(nil, false, nil).Once()
			},
			wantErr: ErrSubscriptionNotFound,
		},
		{
			name: "email занят",
			setup: func(r *RepoMock) {
				r.On("FindRoleByName", mock.Anything, models.RoleUser).Return(userRole, true, nil).Once()
				r.On("FindSubscription", mock.Anything, subID).Return(&models.Subscription{ID: subID}, true, nil).Once()
				r.On("CreateUser", mock.Anything, mock.Anything).
					Return(fmt.Errorf("storage.CreateUser: %w", repository.ErrEmailTaken)).Once()
			},
			wantErr: ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setup(repo)

			user, err := New(repo, nil, newNoopLogger(), clock).CreateUser(context.Background(), in)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAnyErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrRoleNotFound)
			default:
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, user.ID)
				assert.Equal(t, roleID, user.RoleID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_ReadSubscription(t *testing.T) {
	subID := uuid.New()

	t.Run("подписка найдена", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("FindSubscription", mock.Anything, subID).Return(&models.Subscription{ID: subID, Transaction: "tx-1"}, true, nil).Once()

		sub, err := New(repo, nil, newNoopLogger(), clock).ReadSubscription(context.Background(), subID)
		require.NoError(t, err)
		assert.Equal(t, "tx-1", sub.Transaction)
	})

	t.Run("подписка не найдена", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("FindSubscription", mock.Anything, subID).Return(nil, false, nil).Once()

		_, err := New(repo, nil, newNoopLogger(), clock).ReadSubscription(context.Background(), subID)
		assert.ErrorIs(t, err, ErrSubscriptionNotFound)
	})
}

func TestService_ReadUser(t *testing.T) {
	userID := uuid.New()

	t.Run("пользователь найден", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("FindUser", mock.Anything, userID).Return(&models.User{ID: userID, Email: "ana@sispe.mx"}, true, nil).Once()

		u, err := New(repo, nil, newNoopLogger(), clock).ReadUser(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, "ana@sispe.mx", u.Email)
	})

	t.Run("пользователь не найден", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("FindUser", mock.Anything, userID).Return(nil, false, nil).Once()

		_, err := New(repo, nil, newNoopLogger(), clock).ReadUser(context.Background(), userID)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestService_ListUsers(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListUsers", mock.Anything).Return([]*models.User{{ID: uuid.New()}, {ID: uuid.New()}}, nil).Once()

	users, err := New(repo, nil, newNoopLogger(), clock).ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
	repo.AssertExpectations(t)
}

func TestService_UpdateUser(t *testing.T) {
	userID, adminRole, subID := uuid.New(), uuid.New(), uuid.New()
	current := &models.User{ID: userID, Email: "ana@sispe.mx", PasswordHash: "old-hash"}
	in := UserUpdate{
		Name:           "Ana",
		LastName:       "López",
		Email:          "ANA@sispe.mx",
		RoleID:         adminRole,
		SubscriptionID: subID,
	}

	tests := []struct {
		name     string
		password string
		setup    func(r *RepoMock)
		wantErr  error
	}{
		{
			name: "повышение до администратора без смены пароля",
			setup: func(r *RepoMock) {
				r.On("FindUser", mock.Anything, userID).Return(current, true, nil).Once()
				r.On("FindRole", mock.Anything, adminRole).Return(&models.Role{ID: adminRole, Name: models.RoleAdmin}, true, nil).Once()
				r.On("FindSubscription", mock.Anything, subID).Return(&models.Subscription{ID: subID}, true, nil).Once()
				r.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.ID == userID && u.RoleID == adminRole &&
						u.PasswordHash == "old-hash" && u.Email == "ana@sispe.mx"
				})).Return(1, nil).Once()
			},
		},
		{
			name:     "смена пароля",
			password: "n3w-secret",
			setup: func(r *RepoMock) {
				r.On("FindUser", mock.Anything, userID).Return(current, true, nil).Once()
				r.On("FindRole", mock.Anything, adminRole).Return(&models.Role{ID: adminRole}, true, nil).Once()
				r.On("FindSubscription", mock.Anything, subID).Return(&models.Subscription{ID: subID}, true, nil).Once()
				r.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return password.CompareHash(u.PasswordHash, "n3w-secret") == nil
				})).Return(1, nil).Once()
			},
		},
		{
			name: "пользователь не найден",
			setup: func(r *RepoMock) {
				r.On("FindUser", mock.Anything, userID).Return(nil, false, nil).Once()
			},
			wantErr: ErrUserNotFound,
		},
		{
			name: "роль не найдена",
			setup: func(r *RepoMock) {
				r.On("FindUser", mock.Anything, userID).Return(current, true, nil).Once()
				r.On("FindRole", mock.Anything, adminRole).Return(nil, false, nil).Once()
			},
			wantErr: ErrRoleNotFound,
		},
		{
			name: "подписка не найдена",
			setup: func(r *RepoMock) {
				r.On("FindUser", mock.Anything, userID).Return(current, true, nil).Once()
				r.On("FindRole", mock.Anything, adminRole).Return(&models.Role{ID: adminRole}, true, nil).Once()
				r.On("FindSubscription", mock.Anything, subID).Return(nil, false, nil).Once()
			},
			wantErr: ErrSubscriptionNotFound,
		},
		{
			name: "email занят",
			setup: func(r *RepoMock) {
				r.On("FindUser", mock.Anything, userID).Return(current, true, nil).Once()
				r.On("FindRole", mock.Anything, adminRole).Return(&models.Role{ID: adminRole}, true, nil).Once()
				r.On("FindSubscription", mock.Anything, subID).Return(&models.Subscription{ID: subID}, true, nil).Once()
				r.On("UpdateUser", mock.Anything, mock.Anything).
					Return(0, fmt.Errorf("storage.UpdateUser: %w", repository.ErrEmailTaken)).Once()
			},
			wantErr: ErrEmailTaken,
		},
		{
			name: "пользователь удален между чтением и записью",
			setup: func(r *RepoMock) {
				r.On("FindUser", mock.Anything, userID).Return(current, true, nil).Once()
				r.On("FindRole", mock.Anything, adminRole).Return(&models.Role{ID: adminRole}, true, nil).Once()
				r.On("FindSubscription", mock.Anything, subID).Return(&models.Subscription{ID: subID}, true, nil).Once()
				r.On("UpdateUser", mock.Anything, mock.Anything).Return(0, nil).Once()
			},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setup(repo)
			upd := in
			upd.Password = tt.password

			user, err := New(repo, nil, newNoopLogger(), clock).UpdateUser(context.Background(), userID, upd)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, adminRole, user.RoleID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	hash, err := password.GetHash("s3cret")
	require.NoError(t, err)
	userID := uuid.New()
	creds := &models.Credentials{
		User:     models.User{ID: userID, Email: "ana@sispe.mx", PasswordHash: hash},
		RoleName: models.RoleAdmin,
	}
	maker := jwt.NewJWTMaker("test-secret", time.Hour)

	t.Run("успешный вход", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByEmail", mock.Anything, "ana@sispe.mx").Return(creds, true, nil).Once()

		token, got, err := New(repo, maker, newNoopLogger(), clock).Login(context.Background(), "ANA@sispe.mx", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, creds, got)

		claims, err := maker.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, claims.Role)
		assert.Equal(t, identifier.Format(userID), claims.UserUID)
	})

	t.Run("неверный пароль", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByEmail", mock.Anything, "ana@sispe.mx").Return(creds, true, nil).Once()

		_, _, err := New(repo, maker, newNoopLogger(), clock).Login(context.Background(), "ana@sispe.mx", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("пользователь не найден", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByEmail", mock.Anything, "ghost@sispe.mx").Return(nil, false, nil).Once()

		_, _, err := New(repo, maker, newNoopLogger(), clock).Login(context.Background(), "ghost@sispe.mx", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
