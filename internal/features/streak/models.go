// Package streak управляет «огоньком»: серией дней подряд, в которые
// пользователь сдавал вторсырьё.
// models.go описывает состояние серии.
package streak

import "time"

// State: серия пользователя, хранится в user_progress.
type State struct {
	Current     int        `json:"current"`                 // текущая серия (дней подряд)
	Best        int        `json:"best"`                    // личный рекорд, не убывает
	LastLogDate *time.Time `json:"last_log_date,omitempty"` // дата последней записи (без времени)
}

// Transition: что произошло с серией при новой записи.
type Transition int

const (
	Kept     Transition = iota // запись в тот же день, серия не меняется
	Extended                   // запись на следующий день, серия +1
	Reset                      // пропуск (или первая запись), серия = 1
)

func (t Transition) String() string {
	switch t {
	case Kept:
		return "kept"
	case Extended:
		return "extended"
	default:
		return "reset"
	}
}

// Candidate: пользователь, которому пора напомнить про огонёк.
type Candidate struct {
	UserID  int64
	Current int
}
