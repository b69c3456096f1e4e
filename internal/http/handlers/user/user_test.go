package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/20213tn048/sispe-backend/internal/lib/identifier"
	"github.com/20213tn048/sispe-backend/internal/models"
	"github.com/20213tn048/sispe-backend/internal/services/account"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *MockService) ReadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockService) UpdateUser(ctx context.Context, id uuid.UUID, in account.UserUpdate) (*models.User, error) {
	args := m.Called(ctx, id, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestList(t *testing.T) {
	t.Run("пользователей нет", func(t *testing.T) {
		m := new(MockService)
		m.On("ListUsers", mock.Anything).Return([]*models.User{}, nil).Once()

		w := httptest.NewRecorder()
		New(newLogger(), m).List(w, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "no users found")
	})

	t.Run("хэш пароля не возвращается", func(t *testing.T) {
		m := new(MockService)
		id := uuid.New()
		m.On("ListUsers", mock.Anything).Return([]*models.User{
			{ID: id, Email: "ana@sispe.mx", PasswordHash: "$2a$10$hash"},
		}, nil).Once()

		w := httptest.NewRecorder()
		New(newLogger(), m).List(w, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":"`+identifier.Format(id)+`"`)
		assert.NotContains(t, w.Body.String(), "$2a$10$hash")
	})

	t.Run("ошибка хранилища", func(t *testing.T) {
		m := new(MockService)
		m.On("ListUsers", mock.Anything).Return(nil, errors.New("db")).Once()

		w := httptest.NewRecorder()
		New(newLogger(), m).List(w, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRead(t *testing.T) {
	id := uuid.New()
	hexID := identifier.Format(id)

	tests := []struct {
		name           string
		pathID         string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "найден",
			pathID: hexID,
			setupMock: func(m *MockService) {
				m.On("ReadUser", mock.Anything, id).Return(&models.User{ID: id, Email: "ana@sispe.mx"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"email":"ana@sispe.mx"`,
		},
		{
			name:   "не найден",
			pathID: hexID,
			setupMock: func(m *MockService) {
				m.On("ReadUser", mock.Anything, id).Return(nil, account.ErrUserNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "user not found",
		},
		{
			name:           "некорректный id",
			pathID:         "xyz",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid user_id format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockService)
			tt.setupMock(m)

			w := httptest.NewRecorder()
			New(newLogger(), m).Read(w, withID(httptest.NewRequest(http.MethodGet, "/api/v1/users/"+tt.pathID, nil), tt.pathID))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			m.AssertExpectations(t)
		})
	}
}

func TestUpdate(t *testing.T) {
	id, roleID, subID := uuid.New(), uuid.New(), uuid.New()
	hexID := identifier.Format(id)
	body := `{"name":"Ana","lastname":"Lopez","email":"ana@sispe.mx",` +
		`"fk_rol":"` + identifier.Format(roleID) + `","fk_subscription":"` + identifier.Format(subID) + `"}`
	want := account.UserUpdate{
		Name:           "Ana",
		LastName:       "Lopez",
		Email:          "ana@sispe.mx",
		RoleID:         roleID,
		SubscriptionID: subID,
	}

	tests := []struct {
		name           string
		pathID         string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "пользователь обновлен",
			pathID: hexID,
			body:   body,
			setupMock: func(m *MockService) {
				m.On("UpdateUser", mock.Anything, id, want).
					Return(&models.User{ID: id, Email: "ana@sispe.mx", RoleID: roleID, SubscriptionID: subID}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "user updated",
		},
		{
			name:   "пользователь не найден",
			pathID: hexID,
			body:   body,
			setupMock: func(m *MockService) {
				m.On("UpdateUser", mock.Anything, id, want).Return(nil, account.ErrUserNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "user not found",
		},
		{
			name:   "роль не существует",
			pathID: hexID,
			body:   body,
			setupMock: func(m *MockService) {
				m.On("UpdateUser", mock.Anything, id, want).Return(nil, account.ErrRoleNotFound).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "role ID does not exist",
		},
		{
			name:           "некорректный json",
			pathID:         hexID,
			body:           `{"user":"angel_Camargo"`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
		{
			name:           "короткий пароль",
			pathID:         hexID,
			body:           strings.Replace(body, `"email"`, `"password":"123","email"`, 1),
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "at least 6 characters",
		},
		{
			name:   "ошибка хранилища",
			pathID: hexID,
			body:   body,
			setupMock: func(m *MockService) {
				m.On("UpdateUser", mock.Anything, id, want).Return(nil, errors.New("db")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockService)
			tt.setupMock(m)

			req := withID(httptest.NewRequest(http.MethodPut, "/api/v1/users/"+tt.pathID, strings.NewReader(tt.body)), tt.pathID)
			w := httptest.NewRecorder()
			New(newLogger(), m).Update(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			m.AssertExpectations(t)
		})
	}
}
