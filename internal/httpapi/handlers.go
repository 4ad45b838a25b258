package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"serotonyl.ru/ecobot/internal/common"
	"serotonyl.ru/ecobot/internal/features/badges"
	"serotonyl.ru/ecobot/internal/features/impact"
	"serotonyl.ru/ecobot/internal/features/recycling"
)

// --- журнал ---

func (a *API) submitEvent(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	material, err := impact.ParseMaterialInput(req.Material)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := a.deps.Ledger.Submit(r.Context(), userIDFrom(r.Context()), material, req.ItemCount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubmitResponse(res))
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if raw := q.Get("page"); raw != "" {
		p, err := recycling.ParsePage(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		page = p
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		l, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			writeError(w, r, common.NewValidationError("limit", common.ErrInvalidPage, "Некорректный размер страницы"))
			return
		}
		limit = l
	}

	res, err := a.deps.Ledger.List(r.Context(), userIDFrom(r.Context()), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) removeEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.deps.Ledger.Remove(r.Context(), userIDFrom(r.Context()), eventID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- сводки ---

func (a *API) getDashboard(w http.ResponseWriter, r *http.Request) {
	s, err := a.deps.Dashboard.GetSummary(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := a.deps.Leaderboard.GetLeaderboard(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (a *API) getBadges(w http.ResponseWriter, r *http.Request) {
	views, err := a.deps.Badges.GetBadges(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, badgesResponse{
		Badges: toBadgeDTOs(views),
		Earned: badges.CountEarned(views),
		Total:  len(views),
	})
}

func (a *API) getImpactHistory(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		d, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			writeError(w, r, common.NewValidationError("days", common.ErrValidation, "Некорректное число дней"))
			return
		}
		days = d
	}

	h, err := a.deps.Impact.History(r.Context(), userIDFrom(r.Context()), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (a *API) getMaterials(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"materials": materialDTOs()})
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	name, err := a.deps.Members.UpdateDisplayName(r.Context(), userIDFrom(r.Context()), req.DisplayName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileRequest{DisplayName: name})
}

// --- компаньоны ---

func (a *API) listCompanions(w http.ResponseWriter, r *http.Request) {
	items, err := a.deps.Companions.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companions": items})
}

func (a *API) getCollection(w http.ResponseWriter, r *http.Request) {
	items, err := a.deps.Companions.Collection(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companions": items})
}

func (a *API) getStages(w http.ResponseWriter, r *http.Request) {
	companionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	view, err := a.deps.Companions.Stages(r.Context(), userIDFrom(r.Context()), companionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) selectCompanion(w http.ResponseWriter, r *http.Request) {
	companionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := a.deps.Companions.Select(r.Context(), userIDFrom(r.Context()), companionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selected": c})
}

// --- внутренние маршруты ---

func (a *API) grantOwnership(w http.ResponseWriter, r *http.Request) {
	var req ownershipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.UserID <= 0 || req.CompanionID <= 0 {
		writeError(w, r, common.NewValidationError("user_id", common.ErrValidation, "user_id и companion_id обязательны"))
		return
	}
	if err := a.deps.Members.EnsureUser(r.Context(), req.UserID); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := a.deps.Companions.GrantOwnership(r.Context(), req.UserID, req.CompanionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"created": created})
}

func (a *API) grantPremium(w http.ResponseWriter, r *http.Request) {
	var req premiumRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.UserID <= 0 {
		writeError(w, r, common.NewValidationError("user_id", common.ErrValidation, "user_id обязателен"))
		return
	}
	if err := a.deps.Members.EnsureUser(r.Context(), req.UserID); err != nil {
		writeError(w, r, err)
		return
	}

	n, err := a.deps.Companions.GrantPlanetPass(r.Context(), req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"unlocked": n})
}

// pathID читает положительный id из пути. При ошибке ответ уже отправлен.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, common.NewValidationError(name, common.ErrValidation, "Некорректный id"))
		return 0, false
	}
	return id, true
}
