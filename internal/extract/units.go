package extract

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smarttorque/progsync/internal/program"
)

var degreesPerTurn = decimal.NewFromInt(360)

// TorqueUnitFromHeader derives the torque unit from the torque column's
// header text.
func TorqueUnitFromHeader(header string) program.TorqueUnit {
	h := strings.ToLower(header)
	switch {
	case strings.Contains(h, "kgf"):
		return program.TorqueKgfCm
	case strings.Contains(h, "lbf"):
		return program.TorqueLbfIn
	default:
		return program.TorqueUnknown
	}
}

// IsTurnHeader reports whether an angle column is expressed in turns.
func IsTurnHeader(header string) bool {
	return strings.Contains(strings.ToLower(header), "(turn)")
}

// TurnsToDegrees converts a turn count to degrees.
func TurnsToDegrees(turns decimal.Decimal) decimal.Decimal {
	return turns.Mul(degreesPerTurn)
}
