// Package httpapi отдаёт JSON API для веб-клиента и внутренних сервисов.
// Пользователь приходит в заголовке X-User-ID (его ставит шлюз авторизации),
// внутренние маршруты /internal/* защищены общим токеном X-Internal-Token.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"serotonyl.ru/ecobot/internal/features/badges"
	"serotonyl.ru/ecobot/internal/features/companion"
	"serotonyl.ru/ecobot/internal/features/dashboard"
	"serotonyl.ru/ecobot/internal/features/impact"
	"serotonyl.ru/ecobot/internal/features/leaderboard"
	"serotonyl.ru/ecobot/internal/features/recycling"
)

// Ledger: журнал сдачи.
type Ledger interface {
	Submit(ctx context.Context, userID int64, material impact.Material, count int) (*recycling.SubmitResult, error)
	Remove(ctx context.Context, userID, eventID int64) error
	List(ctx context.Context, userID int64, page, limit int) (*recycling.EventPage, error)
}

// Dashboard: сводка пользователя.
type Dashboard interface {
	GetSummary(ctx context.Context, userID int64) (*dashboard.Summary, error)
}

// Leaderboard: рейтинг недели.
type Leaderboard interface {
	GetLeaderboard(ctx context.Context, userID int64) (*leaderboard.Board, error)
}

// Badges: значки пользователя.
type Badges interface {
	GetBadges(ctx context.Context, userID int64) ([]badges.View, error)
}

// Companions: каталог, выбор и владение компаньонами.
type Companions interface {
	List(ctx context.Context, userID int64) ([]companion.ListItem, error)
	Collection(ctx context.Context, userID int64) ([]companion.CollectionItem, error)
	Stages(ctx context.Context, userID, companionID int64) (*companion.StagesView, error)
	Select(ctx context.Context, userID, companionID int64) (*companion.Companion, error)
	GrantOwnership(ctx context.Context, userID, companionID int64) (bool, error)
	GrantPlanetPass(ctx context.Context, userID int64) (int64, error)
}

// Impact: история эффекта.
type Impact interface {
	History(ctx context.Context, userID int64, days int) (*impact.History, error)
}

// Members: профиль.
type Members interface {
	EnsureUser(ctx context.Context, userID int64) error
	UpdateDisplayName(ctx context.Context, userID int64, name string) (string, error)
}

// Observer: метрики HTTP.
type Observer interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// Deps: всё, что нужно API.
type Deps struct {
	Ledger        Ledger
	Dashboard     Dashboard
	Leaderboard   Leaderboard
	Badges        Badges
	Companions    Companions
	Impact        Impact
	Members       Members
	Metrics       Observer
	InternalToken string

	// nil: глобальный реестр
	Gatherer prometheus.Gatherer
	// проверка БД для /healthz, может быть nil
	Health func(context.Context) error
}

// API держит зависимости обработчиков.
type API struct {
	deps Deps
}

// NewRouter собирает chi-роутер со всеми маршрутами.
func NewRouter(deps Deps) http.Handler {
	a := &API{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.healthz)
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(a.identity)

		r.Post("/events", a.submitEvent)
		r.Get("/events", a.listEvents)
		r.Delete("/events/{id}", a.removeEvent)

		r.Get("/dashboard", a.getDashboard)
		r.Get("/leaderboard", a.getLeaderboard)
		r.Get("/badges", a.getBadges)
		r.Get("/impact/history", a.getImpactHistory)
		r.Get("/materials", a.getMaterials)
		r.Put("/profile", a.updateProfile)

		r.Get("/companions", a.listCompanions)
		r.Get("/companions/mine", a.getCollection)
		r.Get("/companions/{id}/stages", a.getStages)
		r.Post("/companions/{id}/select", a.selectCompanion)
	})

	r.Route("/internal", func(r chi.Router) {
		r.Use(a.internalAuth)

		r.Post("/ownership", a.grantOwnership)
		r.Post("/premium", a.grantPremium)
	})

	return r
}

// NewServer создаёт http.Server с таймаутами из конфига.
func NewServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       2 * time.Minute,
	}
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	if a.deps.Health != nil {
		if err := a.deps.Health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
