package impact

import "time"

// DayTotals: сумма за один календарный день.
type DayTotals struct {
	Date        time.Time `json:"date"`
	CarbonSaved float64   `json:"carbon_saved"`
	WaterSaved  float64   `json:"water_saved"`
	Items       int64     `json:"items"`
}

// MaterialTotals: вклад одного материала за всё время.
type MaterialTotals struct {
	Material    Material `json:"material"`
	Logs        int64    `json:"logs"`
	Items       int64    `json:"items"`
	CarbonSaved float64  `json:"carbon_saved"`
	WaterSaved  float64  `json:"water_saved"`
}

// History: дневная серия и разбивка по материалам.
type History struct {
	Days       int              `json:"days"`
	Series     []DayTotals      `json:"series"`
	ByMaterial []MaterialTotals `json:"by_material"`
}
