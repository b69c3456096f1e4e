// Package metrics регистрирует метрики Prometheus сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы операции с избранным.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	// FavoriteOperations считает операции с избранным по типу и исходу.
	FavoriteOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sispe",
		Name:      "favorite_operations_total",
		Help:      "Number of favorite operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	// HTTPRequests считает HTTP-запросы по маршруту, методу и коду ответа.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sispe",
		Name:      "http_requests_total",
		Help:      "Number of HTTP requests.",
	}, []string{"method", "route", "status"})

	// HTTPDuration распределение времени обработки HTTP-запросов.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sispe",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)
