package sispe

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/20213tn048/sispe-backend/internal/cache"
	"github.com/20213tn048/sispe-backend/internal/config"
	"github.com/20213tn048/sispe-backend/internal/lib/identifier"
	"github.com/20213tn048/sispe-backend/internal/lib/jwt"
	"github.com/20213tn048/sispe-backend/internal/lib/password"
	"github.com/20213tn048/sispe-backend/internal/metrics"
	"github.com/20213tn048/sispe-backend/internal/models"
	"github.com/20213tn048/sispe-backend/internal/services/account"
	"github.com/20213tn048/sispe-backend/internal/services/catalog"
	"github.com/20213tn048/sispe-backend/internal/services/favorite"
	"github.com/20213tn048/sispe-backend/internal/services/rating"
	"github.com/20213tn048/sispe-backend/internal/storage/repository"
)

func newTestRouter(t *testing.T) (http.Handler, sqlmock.Sqlmock, *jwt.Maker) {
	t.Helper()
	return newLimitedTestRouter(t, config.RateLimit{RPS: 1000, Burst: 1000})
}

func newLimitedTestRouter(t *testing.T, limit config.RateLimit) (http.Handler, sqlmock.Sqlmock, *jwt.Maker) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewWithDB(db)
	tokens := jwt.NewJWTMaker("routes_test_secret", time.Hour)

	r := chi.NewRouter()
	RegisterRoutes(r, logger, Services{
		Favorites: favorite.New(store, logger),
		Catalog:   catalog.New(store, cache.Noop{}, time.Minute, logger),
		Ratings:   rating.New(store, logger),
		Accounts:  account.New(store, tokens, logger, nil),
		Tokens:    tokens,
		Health:    store,
	}, limit)
	return r, mock, tokens
}

func TestRoutes_Health(t *testing.T) {
	r, mock, _ := newTestRouter(t)
	mock.ExpectQuery("information_schema.tables").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutes_AdminGuard(t *testing.T) {
	r, _, tokens := newTestRouter(t)
	userToken, err := tokens.GenerateToken("user@sispe.mx", "user", "0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"создание фильма без токена", http.MethodPost, "/api/v1/films", "", http.StatusUnauthorized},
		{"создание категории обычным пользователем", http.MethodPost, "/api/v1/categories", userToken, http.StatusForbidden},
		{"удаление фильма обычным пользователем", http.MethodDelete, "/api/v1/films/0123456789abcdef0123456789abcdef", userToken, http.StatusForbidden},
		{"список пользователей без токена", http.MethodGet, "/api/v1/users", "", http.StatusUnauthorized},
		{"смена роли обычным пользователем", http.MethodPut, "/api/v1/users/0123456789abcdef0123456789abcdef", userToken, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRoutes_FavoriteInvalidIdentifierSkipsStorage(t *testing.T) {
	r, mock, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/favorites",
		strings.NewReader(`{"fk_user":"xyz","fk_film":"0123456789abcdef0123456789abcdef"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutes_Metrics(t *testing.T) {
	r, _, _ := newTestRouter(t)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/no-such-route", nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sispe_http_requests_total")
}

func TestRoutes_SelfRegisteredUserIsNotAdmin(t *testing.T) {
	const (
		adminRoleHex = "7f3e1a526c1d4b8e9f432a1d5c0b9e01"
		userRoleHex  = "7f3e1a526c1d4b8e9f432a1d5c0b9e02"
		subHex       = "0123456789abcdef0123456789abcdef"
	)
	userRoleID, err := identifier.Parse(userRoleHex)
	require.NoError(t, err)
	subID, err := identifier.Parse(subHex)
	require.NoError(t, err)
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	r, mock, _ := newTestRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM roles WHERE name = $1")).
		WithArgs(models.RoleUser).
		WillReturnRows(sqlmock.NewRows([]string{"rol_id", "name"}).AddRow(userRoleID.String(), models.RoleUser))
	mock.ExpectQuery(regexp.QuoteMeta("FROM subscriptions")).
		WithArgs(subID).
		WillReturnRows(sqlmock.NewRows([]string{"subscription_id", "start_date", "end_date", "transaction"}).
			AddRow(subID.String(), time.Now(), time.Now().AddDate(0, 1, 0), "txn-1"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "Eva", "Ruiz", "eva@sispe.mx", sqlmock.AnyArg(), userRoleID, subID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(
		`{"name":"Eva","lastname":"Ruiz","email":"eva@sispe.mx","password":"secret123",`+
			`"fk_rol":"`+adminRoleHex+`","fk_subscription":"`+subHex+`"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"fk_rol":"`+userRoleHex+`"`)
	assert.NotContains(t, rec.Body.String(), adminRoleHex)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users u")).
		WithArgs("eva@sispe.mx").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name", "lastname", "email", "password", "fk_rol", "fk_subscription", "name"}).
			AddRow(uuid.New().String(), "Eva", "Ruiz", "eva@sispe.mx", hash, userRoleID.String(), subID.String(), models.RoleUser))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/login",
		strings.NewReader(`{"email":"eva@sispe.mx","password":"secret123"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		Data struct {
			Token string `json:"token"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, models.RoleUser, login.Data.Role)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", strings.NewReader(`{"name":"Drama"}`))
	req.Header.Set("Authorization", "Bearer "+login.Data.Token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutes_AdminReadsUserAndSubscription(t *testing.T) {
	r, mock, tokens := newTestRouter(t)
	adminToken, err := tokens.GenerateToken("root@sispe.mx", models.RoleAdmin, "0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name", "lastname", "email", "password", "fk_rol", "fk_subscription"}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+identifier.Format(id), nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")

	mock.ExpectQuery(regexp.QuoteMeta("FROM subscriptions")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"subscription_id", "start_date", "end_date", "transaction"}))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/"+identifier.Format(id), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "subscription not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutes_RateLimitedRequestsAreCounted(t *testing.T) {
	r, _, _ := newLimitedTestRouter(t, config.RateLimit{RPS: 0.001, Burst: 1})
	rejected := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "429")
	before := testutil.ToFloat64(rejected)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/films/xyz", nil))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/films/xyz", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(rejected))
}
