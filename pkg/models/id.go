package models

import (
	"strings"

	"github.com/spf13/cast"
)

// NormalizeID turns a driver/order/actor identifier of any scanned type into
// its canonical string form. Missing values become "".
func NormalizeID(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case *string:
		if id == nil {
			return ""
		}
		return NormalizeID(*id)
	case *int64:
		if id == nil {
			return ""
		}
		return cast.ToString(*id)
	}

	s := strings.TrimSpace(cast.ToString(v))
	switch strings.ToLower(s) {
	case "nan", "null", "<nil>":
		return ""
	}
	return s
}

// DriverDay identifies one driver on one calendar date.
type DriverDay struct {
	DriverID string
	Date     string
}

// OrderDriver identifies one driver's involvement in one order.
type OrderDriver struct {
	OrderID  string
	DriverID string
}
