package storage

import (
	"database/sql"
	"time"

	"github.com/gameshelf/gameshelf/pkg/coerce"
	"github.com/shopspring/decimal"
)

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullBool(v *bool) interface{} {
	if v == nil {
		return nil
	}
	return boolToInt(*v)
}

// Prices are stored as fixed two-decimal text so equality in SQL is exact.
func nullPrice(v *decimal.Decimal) interface{} {
	if v == nil {
		return nil
	}
	return v.StringFixed(2)
}

func nullDate(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return v.Format(coerce.DateLayout)
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func boolPtr(n sql.NullInt64) *bool {
	if !n.Valid {
		return nil
	}
	v := n.Int64 == 1
	return &v
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func parsePrice(n sql.NullString) *decimal.Decimal {
	if !n.Valid || n.String == "" {
		return nil
	}
	d, err := decimal.NewFromString(n.String)
	if err != nil {
		return nil
	}
	return &d
}

func parseDate(n sql.NullString) *time.Time {
	if !n.Valid || n.String == "" {
		return nil
	}
	t, err := time.Parse(coerce.DateLayout, n.String)
	if err != nil {
		return nil
	}
	return &t
}
