package httpapi

import (
	"time"

	"serotonyl.ru/ecobot/internal/features/badges"
	"serotonyl.ru/ecobot/internal/features/companion"
	"serotonyl.ru/ecobot/internal/features/impact"
	"serotonyl.ru/ecobot/internal/features/recycling"
)

type submitRequest struct {
	Material  string `json:"material"`
	ItemCount int    `json:"item_count"`
}

type profileRequest struct {
	DisplayName string `json:"display_name"`
}

type ownershipRequest struct {
	UserID      int64 `json:"user_id"`
	CompanionID int64 `json:"companion_id"`
}

type premiumRequest struct {
	UserID int64 `json:"user_id"`
}

type badgeDTO struct {
	ID           int64      `json:"id"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Emoji        string     `json:"emoji"`
	CriteriaKind string     `json:"criteria_kind"`
	Threshold    float64    `json:"threshold"`
	Requirement  string     `json:"requirement"`
	Earned       bool       `json:"earned"`
	EarnedAt     *time.Time `json:"earned_at,omitempty"`
}

func toBadgeDTO(b badges.Badge) badgeDTO {
	dto := badgeDTO{
		ID:          b.ID,
		Code:        b.Code,
		Name:        b.Name,
		Description: b.Description,
		Emoji:       b.Emoji,
	}
	if b.Criterion != nil {
		dto.CriteriaKind = string(b.Criterion.Kind())
		dto.Threshold = b.Criterion.Threshold()
		dto.Requirement = badges.Requirement(b.Criterion)
	}
	return dto
}

func toBadgeDTOs(views []badges.View) []badgeDTO {
	out := make([]badgeDTO, 0, len(views))
	for _, v := range views {
		dto := toBadgeDTO(v.Badge)
		dto.Earned = v.Earned
		dto.EarnedAt = v.EarnedAt
		out = append(out, dto)
	}
	return out
}

type badgesResponse struct {
	Badges []badgeDTO `json:"badges"`
	Earned int        `json:"earned"`
	Total  int        `json:"total"`
}

type submitResponse struct {
	Event         recycling.Event      `json:"event"`
	NewBadges     []badgeDTO           `json:"new_badges"`
	StreakCurrent int                  `json:"streak_current"`
	PointsEarned  int64                `json:"points_earned"`
	Evolution     *companion.Evolution `json:"evolution"`
}

func toSubmitResponse(res *recycling.SubmitResult) submitResponse {
	out := submitResponse{
		Event:         res.Event,
		NewBadges:     make([]badgeDTO, 0, len(res.NewBadges)),
		StreakCurrent: res.StreakCurrent,
		PointsEarned:  res.PointsEarned,
		Evolution:     res.Evolution,
	}
	for _, b := range res.NewBadges {
		dto := toBadgeDTO(b)
		dto.Earned = true
		out.NewBadges = append(out.NewBadges, dto)
	}
	return out
}

type materialDTO struct {
	Code          impact.Material `json:"code"`
	Title         string          `json:"title"`
	Emoji         string          `json:"emoji"`
	WeightKg      float64         `json:"weight_kg"`
	CarbonPerItem float64         `json:"carbon_per_item"`
	WaterPerItem  float64         `json:"water_per_item"`
}

func materialDTOs() []materialDTO {
	ms := impact.Materials()
	out := make([]materialDTO, 0, len(ms))
	for _, m := range ms {
		p, _ := m.Profile()
		out = append(out, materialDTO{
			Code:          m,
			Title:         p.Title,
			Emoji:         p.Emoji,
			WeightKg:      p.WeightKg,
			CarbonPerItem: p.WeightKg * p.CarbonPerKg,
			WaterPerItem:  p.WeightKg * p.WaterPerKg,
		})
	}
	return out
}
