// Package impact считает экологический эффект от сданного вторсырья:
// сколько килограммов CO₂ и литров воды сэкономлено.
// materials.go описывает фиксированный список материалов и их профили.
package impact

import "strings"

// Material: тип сданного вторсырья. Набор значений закрыт.
type Material string

const (
	Aluminum  Material = "aluminum"
	Plastic   Material = "plastic"
	Glass     Material = "glass"
	Paper     Material = "paper"
	Steel     Material = "steel"
	Cardboard Material = "cardboard"
)

// Profile: физические коэффициенты одного материала.
type Profile struct {
	WeightKg    float64 // вес одного предмета (банка, бутылка, лист...)
	CarbonPerKg float64 // кг CO₂, сэкономленные на 1 кг материала
	WaterPerKg  float64 // литры воды, сэкономленные на 1 кг материала
	Title       string  // название для сообщений
	Emoji       string
}

// profiles: статическая таблица коэффициентов. Порядок в Materials() задаёт порядок в меню.
var profiles = map[Material]Profile{
	Aluminum:  {WeightKg: 0.014, CarbonPerKg: 9.13, WaterPerKg: 40.0, Title: "алюминий", Emoji: "🥫"},
	Plastic:   {WeightKg: 0.0083, CarbonPerKg: 1.5, WaterPerKg: 22.0, Title: "пластик", Emoji: "🧴"},
	Glass:     {WeightKg: 0.35, CarbonPerKg: 0.31, WaterPerKg: 3.0, Title: "стекло", Emoji: "🍾"},
	Paper:     {WeightKg: 0.3, CarbonPerKg: 3.55, WaterPerKg: 30.0, Title: "бумага", Emoji: "📰"},
	Steel:     {WeightKg: 0.05, CarbonPerKg: 1.82, WaterPerKg: 12.0, Title: "сталь", Emoji: "🔩"},
	Cardboard: {WeightKg: 0.4, CarbonPerKg: 3.12, WaterPerKg: 27.0, Title: "картон", Emoji: "📦"},
}

var ordered = []Material{Aluminum, Plastic, Glass, Paper, Steel, Cardboard}

// Materials возвращает все материалы в порядке показа.
func Materials() []Material {
	out := make([]Material, len(ordered))
	copy(out, ordered)
	return out
}

// Valid сообщает, входит ли материал в закрытый список.
func (m Material) Valid() bool {
	_, ok := profiles[m]
	return ok
}

// Profile возвращает коэффициенты материала и false для неизвестного.
func (m Material) Profile() (Profile, bool) {
	p, ok := profiles[m]
	return p, ok
}

// Title возвращает русское название, а для неизвестного материала: его код.
func (m Material) Title() string {
	if p, ok := profiles[m]; ok {
		return p.Title
	}
	return string(m)
}

// ParseMaterial понимает код ("aluminum") и русское название ("алюминий") в любом регистре.
func ParseMaterial(s string) (Material, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	if m := Material(s); m.Valid() {
		return m, true
	}
	for _, m := range ordered {
		if profiles[m].Title == s {
			return m, true
		}
	}
	return "", false
}
