package update

import (
	"context"
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
	"github.com/20213tn048/sispe-backend/internal/services/rating"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, r models.Rating) error {
	return m.Called(ctx, r).Error(0)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	id := uuid.New()
	hexID := identifier.Format(id)
	refs := `"fk_user":"` + identifier.Format(uuid.New()) + `","fk_film":"` + identifier.Format(uuid.New()) + `"`

	tests := []struct {
		name           string
		pathID         string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "успешное обновление",
			pathID: hexID,
			body:   `{"grade":1.2,` + refs + `}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, mock.MatchedBy(func(r models.Rating) bool {
					return r.ID == id && r.Grade == 1.2
				})).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "rating updated",
		},
		{
			name:   "оценка не найдена",
			pathID: hexID,
			body:   `{"grade":1,` + refs + `}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, mock.Anything).Return(rating.ErrRatingNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "rating not found",
		},
		{
			name:           "слишком длинный комментарий",
			pathID:         hexID,
			body:           `{"grade":1,"comment":"` + strings.Repeat("a", 256) + `",` + refs + `}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "field Comment must be at most 255 characters long",
		},
		{
			name:           "некорректный id",
			pathID:         strings.Repeat("g", 32),
			body:           `{"grade":1,` + refs + `}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid rating_id format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockService)
			tt.setupMock(m)

			req := httptest.NewRequest(http.MethodPut, "/api/v1/ratings/"+tt.pathID, strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.pathID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			New(logger, m).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			m.AssertExpectations(t)
		})
	}
}
