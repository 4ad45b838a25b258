// Package metrics содержит счётчики Prometheus для бота и HTTP API.
// Набор создаётся один раз при старте и передаётся сервисам явно.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ecobot"

// Metrics: все коллекторы приложения.
type Metrics struct {
	eventsSubmitted  *prometheus.CounterVec
	eventsRemoved    prometheus.Counter
	badgesGranted    prometheus.Counter
	evolutions       prometheus.Counter
	leaderboardCache *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New создаёт коллекторы и регистрирует их в reg.
// nil означает prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		eventsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_submitted_total",
			Help:      "Принятые записи о сдаче по материалам.",
		}, []string{"material"}),
		eventsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_removed_total",
			Help:      "Удалённые пользователями записи о сдаче.",
		}),
		badgesGranted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "badges_granted_total",
			Help:      "Выданные значки.",
		}),
		evolutions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evolutions_total",
			Help:      "Переходы компаньонов на следующую стадию.",
		}),
		leaderboardCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leaderboard_cache_total",
			Help:      "Обращения к кэшу рейтинга (hit/miss/error).",
		}, []string{"result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Длительность HTTP-запросов.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.eventsSubmitted,
		m.eventsRemoved,
		m.badgesGranted,
		m.evolutions,
		m.leaderboardCache,
		m.httpDuration,
	)
	return m
}

// EventSubmitted учитывает принятую запись.
func (m *Metrics) EventSubmitted(material string) {
	m.eventsSubmitted.WithLabelValues(material).Inc()
}

// EventRemoved учитывает удалённую запись.
func (m *Metrics) EventRemoved() {
	m.eventsRemoved.Inc()
}

// BadgesGranted учитывает n новых значков.
func (m *Metrics) BadgesGranted(n int) {
	if n > 0 {
		m.badgesGranted.Add(float64(n))
	}
}

// Evolution учитывает эволюцию компаньона.
func (m *Metrics) Evolution() {
	m.evolutions.Inc()
}

// Результаты обращения к кэшу рейтинга.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// LeaderboardCache учитывает обращение к кэшу рейтинга.
func (m *Metrics) LeaderboardCache(result string) {
	m.leaderboardCache.WithLabelValues(result).Inc()
}

// ObserveHTTP записывает длительность запроса.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
