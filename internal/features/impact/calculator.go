package impact

import (
	"strconv"
	"strings"

	"serotonyl.ru/ecobot/internal/common"
)

// Пределы количества предметов в одной записи.
const (
	MinItems = 1
	MaxItems = 999
)

// Тексты отказов показываются пользователю как есть.
const (
	msgPickMaterial = "Выберите материал из списка"
	msgWholeNumber  = "Введите целое число"
	msgTooFew       = "Ой! Нужно сдать хотя бы 1 предмет"
	msgTooMany      = "Ого, это МНОГО! Максимум 999 за раз"
)

// Impact: сэкономленные ресурсы. Значения не округляются:
// округление: забота того, кто показывает результат.
type Impact struct {
	CarbonSaved float64 `json:"carbon_saved"` // кг CO₂
	WaterSaved  float64 `json:"water_saved"`  // литры
}

// Compute считает эффект от count предметов материала m.
//
//	carbon = count × weight_kg × carbon_per_kg
//	water  = count × weight_kg × water_per_kg
//
// Не делает I/O и не меняет состояние.
func Compute(m Material, count int) (Impact, error) {
	p, ok := m.Profile()
	if !ok {
		return Impact{}, common.NewValidationError("material", common.ErrInvalidMaterial, msgPickMaterial)
	}
	if err := ValidateQuantity(count); err != nil {
		return Impact{}, err
	}

	weight := float64(count) * p.WeightKg
	return Impact{
		CarbonSaved: weight * p.CarbonPerKg,
		WaterSaved:  weight * p.WaterPerKg,
	}, nil
}

// ValidateQuantity проверяет, что количество в пределах [1, 999].
func ValidateQuantity(count int) error {
	switch {
	case count < MinItems:
		return common.NewValidationError("item_count", common.ErrInvalidQuantity, msgTooFew)
	case count > MaxItems:
		return common.NewValidationError("item_count", common.ErrInvalidQuantity, msgTooMany)
	}
	return nil
}

// ParseQuantity разбирает количество из текста пользователя.
func ParseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, common.NewValidationError("item_count", common.ErrInvalidQuantity, msgWholeNumber)
	}
	if err := ValidateQuantity(n); err != nil {
		return 0, err
	}
	return n, nil
}

// ParseMaterialInput: ParseMaterial с ошибкой валидации вместо флага.
func ParseMaterialInput(s string) (Material, error) {
	m, ok := ParseMaterial(s)
	if !ok {
		return "", common.NewValidationError("material", common.ErrInvalidMaterial, msgPickMaterial)
	}
	return m, nil
}
