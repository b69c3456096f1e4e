package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) CheckDatabaseReady(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		checkErr   error
		wantStatus int
		wantBody   string
	}{
		{"хранилище готово", nil, http.StatusOK, `{"status":"OK","data":{"status":"ok"}}`},
		{"нет таблиц", errors.New("required table favorites missing"), http.StatusServiceUnavailable, "storage unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(logger, checkerFunc(func(context.Context) error { return tt.checkErr }))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
