package postgres

import (
	"fmt"

	"github.com/ariefcatur/go-menu-pricing/internal/pricing"
)

// WindowPredicate renders the SQL form of pricing.Window.Contains for a pair
// of nullable TIME columns and a TIME parameter:
//   - both bounds NULL matches everything
//   - a single NULL bound matches nothing
//   - from <= to is an inclusive same-day range
//   - from > to wraps past midnight
func WindowPredicate(fromCol, toCol, param string) string {
	return fmt.Sprintf(`(
		(%[1]s IS NULL AND %[2]s IS NULL)
		OR (%[1]s <= %[2]s AND %[3]s BETWEEN %[1]s AND %[2]s)
		OR (%[1]s > %[2]s AND (%[3]s >= %[1]s OR %[3]s <= %[2]s))
	)`, fromCol, toCol, param)
}

// TimeText selects a TIME column as HH:MM:SS text, NULL preserved.
func TimeText(col string) string {
	return fmt.Sprintf("to_char(%s, 'HH24:MI:SS')", col)
}

// TimeParam encodes an optional time of day as a text parameter. Queries cast
// it with $n::text::time.
func TimeParam(t *pricing.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}
