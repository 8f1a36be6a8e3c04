package model

// Units of measure as entered in the form (German labels).
const (
	UnitHour        = "Std"
	UnitPiece       = "Stk"
	UnitMeter       = "m"
	UnitSquareMeter = "m²"
	UnitCubicMeter  = "m³"
	UnitKilogram    = "kg"
	UnitDay         = "Tag"
	UnitLiter       = "l"
	UnitLumpSum     = "pauschal"
)

// DefaultUnitCode is used for any unit missing from the mapping table.
const DefaultUnitCode = "H87" // piece

// unitCodes maps form units to UN/ECE Recommendation 20 codes.
var unitCodes = map[string]string{
	UnitHour:        "HUR",
	UnitPiece:       "H87",
	UnitMeter:       "MTR",
	UnitSquareMeter: "MTK",
	UnitCubicMeter:  "MTQ",
	UnitKilogram:    "KGM",
	UnitDay:         "DAY",
	UnitLiter:       "LTR",
	UnitLumpSum:     "LS",
}

// UnitCode returns the UN/ECE Rec 20 code for a form unit, falling back to
// H87 ("piece") for anything unknown.
func UnitCode(unit string) string {
	if code, ok := unitCodes[unit]; ok {
		return code
	}
	return DefaultUnitCode
}

// UnitCodes returns a copy of the full unit mapping table.
func UnitCodes() map[string]string {
	m := make(map[string]string, len(unitCodes))
	for k, v := range unitCodes {
		m[k] = v
	}
	return m
}
