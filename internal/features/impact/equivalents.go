package impact

import "math"

// Коэффициенты перевода в наглядные величины.
const (
	KmPerKgCO2       = 5.5   // км поездки на машине на 1 кг CO₂
	KgCO2PerTree     = 22.0  // сколько CO₂ дерево поглощает за год
	LitersPerBathtub = 100.0 // объём ванны
	KgCO2PerHalfTank = 10.0  // полбака бензина
)

// Equivalents: сэкономленное в понятных единицах, с одним знаком после запятой.
type Equivalents struct {
	Trees     float64 `json:"trees"`
	KmDriven  float64 `json:"km_driven"`
	Bathtubs  float64 `json:"bathtubs"`
	HalfTanks float64 `json:"half_tanks_gas"`
}

// ComputeEquivalents переводит итоговые CO₂ и воду в деревья, километры, ванны и полбака.
// Деревья и бензин округляются вниз (не приписываем лишнего), километры и ванны: по правилам.
func ComputeEquivalents(carbonKg, waterLiters float64) Equivalents {
	return Equivalents{
		Trees:     math.Floor(carbonKg/KgCO2PerTree*10) / 10,
		KmDriven:  math.Round(carbonKg*KmPerKgCO2*10) / 10,
		Bathtubs:  math.Round(waterLiters/LitersPerBathtub*10) / 10,
		HalfTanks: math.Floor(carbonKg/KgCO2PerHalfTank*10) / 10,
	}
}
