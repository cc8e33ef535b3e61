package leave

import "github.com/shopspring/decimal"

// OverrideValue converts an administrator-entered figure into the stored
// signed balance. The sign convention switches at the probation boundary:
//
//   probationary: input means "days used", stored negated (<= 0)
//   confirmed:    input means "days remaining", stored as-is
//
// Every caller of the administrative override goes through this function;
// nothing else in the codebase is allowed to flip the sign.
func OverrideValue(input decimal.Decimal, probationary bool) decimal.Decimal {
	if probationary {
		return input.Neg()
	}
	return input
}

// UsedFromOverride reinterprets a probationary override back into a usage
// figure for display. The inverse of OverrideValue in the probationary case.
func UsedFromOverride(stored decimal.Decimal) decimal.Decimal {
	return stored.Neg()
}
