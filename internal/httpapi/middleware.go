package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// Заголовки, которые ставит шлюз и внутренние сервисы.
const (
	HeaderUserID        = "X-User-ID"
	HeaderInternalToken = "X-Internal-Token"
)

type userIDKey struct{}

// userIDFrom достаёт пользователя, положенного identity.
func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey{}).(int64)
	return id
}

// accessLog пишет каждый запрос в лог и в гистограмму длительности.
func (a *API) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			latency := time.Since(start)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			if a.deps.Metrics != nil {
				a.deps.Metrics.ObserveHTTP(r.Method, route, status, latency)
			}

			entry := log.WithFields(log.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"route":      route,
				"status":     status,
				"bytes":      ww.BytesWritten(),
				"latency":    latency.String(),
				"remote":     r.RemoteAddr,
			})
			if status >= http.StatusInternalServerError {
				entry.Error("server error")
			} else {
				entry.Info("request completed")
			}
		}()

		next.ServeHTTP(ww, r)
	})
}

// identity читает X-User-ID и регистрирует пользователя при первом обращении.
func (a *API) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(HeaderUserID))
		userID, err := strconv.ParseInt(raw, 10, 64)
		if raw == "" || err != nil || userID <= 0 {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Требуется авторизация"})
			return
		}

		if err := a.deps.Members.EnsureUser(r.Context(), userID); err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// internalAuth пропускает только запросы с верным X-Internal-Token.
func (a *API) internalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(HeaderInternalToken)
		if a.deps.InternalToken == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(a.deps.InternalToken)) != 1 {
			log.WithField("remote", r.RemoteAddr).Warn("Отклонён запрос к внутреннему API")
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Неверный токен"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
