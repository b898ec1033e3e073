package valueobject

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MeasurementUnit is the unit a catalog price is quoted in
type MeasurementUnit string

const (
	UnitEach       MeasurementUnit = "EACH"
	UnitKilogram   MeasurementUnit = "KG"
	UnitGram       MeasurementUnit = "G"
	UnitMilliliter MeasurementUnit = "ML"
)

// unitAliases maps the spellings seen on the backend boundary to canonical units
var unitAliases = map[string]MeasurementUnit{
	"EACH":       UnitEach,
	"UNIDAD":     UnitEach,
	"UND":        UnitEach,
	"UN":         UnitEach,
	"PCS":        UnitEach,
	"KG":         UnitKilogram,
	"KILO":       UnitKilogram,
	"KILOGRAMO":  UnitKilogram,
	"KILOGRAM":   UnitKilogram,
	"G":          UnitGram,
	"GR":         UnitGram,
	"GRAMO":      UnitGram,
	"GRAM":       UnitGram,
	"ML":         UnitMilliliter,
	"MILILITRO":  UnitMilliliter,
	"MILLILITER": UnitMilliliter,
}

// ParseMeasurementUnit normalises a unit spelling. Empty input resolves to UnitEach.
func ParseMeasurementUnit(s string) (MeasurementUnit, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	if key == "" {
		return UnitEach, nil
	}
	if u, ok := unitAliases[key]; ok {
		return u, nil
	}
	return "", fmt.Errorf("unknown measurement unit %q", s)
}

// IsValid checks if the unit is one of the supported units
func (u MeasurementUnit) IsValid() bool {
	switch u {
	case UnitEach, UnitKilogram, UnitGram, UnitMilliliter:
		return true
	}
	return false
}

// String returns the string representation of the unit
func (u MeasurementUnit) String() string {
	return string(u)
}

// SoldByWeight reports whether lines of this unit may request a sub-unit amount
func (u MeasurementUnit) SoldByWeight() bool {
	return u == UnitKilogram || u == UnitGram || u == UnitMilliliter
}

// GramFactor is the number of requested sub-units that make up one priced unit:
// 1000 for kilogram-priced goods, 1 when the price is already per gram or milliliter.
func (u MeasurementUnit) GramFactor() decimal.Decimal {
	if u == UnitKilogram {
		return decimal.NewFromInt(1000)
	}
	return decimal.NewFromInt(1)
}
