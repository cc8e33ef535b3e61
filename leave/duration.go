package leave

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var half = decimal.New(5, -1) // 0.5, exact

// Days computes the day-count for an inclusive date range: the whole-day
// count is ceil(|end-start| in days) + 1, and half-day leave contributes
// half of that.
//
// A reversed range (start after end) is tolerated via the absolute
// difference rather than rejected. Callers that want validation must do it
// themselves; the calculator never fails.
func Days(start, end time.Time, typ Type) decimal.Decimal {
	diff := end.Sub(start).Hours()
	if diff < 0 {
		diff = -diff
	}
	whole := int64(math.Ceil(diff/24)) + 1

	d := decimal.NewFromInt(whole)
	if typ == TypeHalfDay {
		d = d.Mul(half)
	}
	return d
}
