// Package companion описывает компаньонов, зверьков, которые растут вместе с вкладом пользователя.
// models.go описывает справочник компаньонов, стадии эволюции и владение.
package companion

import "time"

// Companion: запись справочника companions. Справочник только читается.
type Companion struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Emoji              string `json:"emoji"`
	Color              string `json:"color"`
	ConservationStatus string `json:"conservation_status"`
	IsPremium          bool   `json:"is_premium"`
	PriceCents         *int64 `json:"price_cents,omitempty"` // только для премиальных
}

// Stage: стадия эволюции. PointsRequired строго растёт с номером стадии.
type Stage struct {
	CompanionID    int64  `json:"companion_id"`
	Number         int    `json:"stage_number"`
	PointsRequired int64  `json:"points_required"`
	Name           string `json:"stage_name"`
}

// Ownership: компаньон пользователя. CurrentStage только растёт.
type Ownership struct {
	UserID       int64     `json:"user_id"`
	CompanionID  int64     `json:"companion_id"`
	CurrentStage int       `json:"current_stage"`
	UnlockedAt   time.Time `json:"unlocked_at"`
}

// Evolution: результат перехода на следующую стадию.
type Evolution struct {
	CompanionID   int64  `json:"companion_id"`
	CompanionName string `json:"companion_name"`
	Emoji         string `json:"emoji"`
	NewStage      int    `json:"new_stage"`
	StageName     string `json:"stage_name"`
}

// ListItem: компаньон в каталоге с отметками для конкретного пользователя.
type ListItem struct {
	Companion
	Owned        bool `json:"owned"`
	CurrentStage int  `json:"current_stage"` // 0, если не открыт
	Selected     bool `json:"selected"`
}

// CollectionItem: открытый пользователем компаньон.
type CollectionItem struct {
	Companion
	CurrentStage int       `json:"current_stage"`
	StageName    string    `json:"stage_name"`
	UnlockedAt   time.Time `json:"unlocked_at"`
}

// StagesView: все стадии компаньона и текущая стадия пользователя.
type StagesView struct {
	Companion    Companion `json:"companion"`
	Stages       []Stage   `json:"stages"`
	CurrentStage int       `json:"current_stage"` // 0, если не открыт
}

// Progress: прогресс выбранного компаньона для дашборда.
type Progress struct {
	Companion       Companion `json:"companion"`
	CurrentStage    int       `json:"current_stage"`
	StageName       string    `json:"stage_name"`
	NextStageName   string    `json:"next_stage_name,omitempty"`
	NextStagePoints *int64    `json:"next_stage_points,omitempty"`
	Points          int64     `json:"points"`
	IsMaxStage      bool      `json:"is_max_stage"`
}
