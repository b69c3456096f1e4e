package remove

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/20213tn048/sispe-backend/internal/services/favorite"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) RemoveFavorite(ctx context.Context, userHex, filmHex string) error {
	return m.Called(ctx, userHex, filmHex).Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userHex := "0123456789abcdef0123456789abcdef"
	filmHex := "fedcba9876543210fedcba9876543210"
	body := `{"fk_user":"` + userHex + `","fk_film":"` + filmHex + `"}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное удаление",
			body: body,
			setupMock: func(m *MockService) {
				m.On("RemoveFavorite", mock.Anything, userHex, filmHex).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","message":"film removed from favorites"}`,
		},
		{
			name: "записи нет",
			body: body,
			setupMock: func(m *MockService) {
				m.On("RemoveFavorite", mock.Anything, userHex, filmHex).Return(favorite.ErrFavoriteNotFound).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"film is not in favorites list"`,
		},
		{
			name: "подписка истекла",
			body: body,
			setupMock: func(m *MockService) {
				m.On("RemoveFavorite", mock.Anything, userHex, filmHex).Return(favorite.ErrSubscriptionInvalid).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"subscription is not valid or has expired"`,
		},
		{
			name:           "нет полей",
			body:           `{}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `is a required field`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/favorites", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
