// Package metrics содержит коллекторы Prometheus ассистента бронирования.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookinghub"

var (
	// GatewayRequests считает запросы к бэкенду по маршруту и коду ответа.
	// Для транспортных ошибок code = "error".
	GatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Outbound backend requests by route and status code.",
	}, []string{"method", "route", "code"})

	// GatewayDuration — длительность запросов к бэкенду.
	GatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "request_duration_seconds",
		Help:      "Outbound backend request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// SlotSearches считает результаты подбора свободного окна: found / none.
	SlotSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "slot_searches_total",
		Help:      "Free slot searches by result.",
	}, []string{"result"})

	// StaleResponses считает ответы, отброшенные кэшем, потому что уже сохранён более новый.
	StaleResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "stale_responses_dropped_total",
		Help:      "Responses discarded because a newer refresh already committed.",
	}, []string{"slot"})

	// HTTPRequests считает запросы к API ассистента.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Assistant API requests by route pattern and status code.",
	}, []string{"method", "route", "code"})
)
