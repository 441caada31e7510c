// Package item defines the records a grid displays and edits.
//
// The grid never interprets a record beyond reading and writing named fields,
// so any type satisfying Item can be displayed. Two implementations are
// provided: Record, a plain map, and JSON, a raw JSON object addressed with
// gjson paths.
package item

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultIDField is the identifier field used when none is configured.
const DefaultIDField = "id"

// Item is a caller-owned record addressable by field name.
type Item interface {
	// Get returns the value stored under field, or nil when absent.
	Get(field string) any
}

// Setter is implemented by items that editors can write back to.
type Setter interface {
	Set(field string, value any) error
}

// ID returns the identifier of it stored under field.
func ID(it Item, field string) any {
	if it == nil {
		return nil
	}
	return it.Get(field)
}

// ValidID reports whether id can key an index: it must be non-nil and of a
// comparable dynamic type.
func ValidID(id any) bool {
	if id == nil {
		return false
	}
	return reflect.TypeOf(id).Comparable()
}

// Equal compares two field values without panicking on uncomparable types.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// Record is a map-backed item.
type Record map[string]any

// NewRecord returns an empty record with a freshly generated identifier.
func NewRecord(idField string) Record {
	if idField == "" {
		idField = DefaultIDField
	}
	return Record{idField: uuid.NewString()}
}

// Get implements Item.
func (r Record) Get(field string) any {
	return r[field]
}

// Set implements Setter.
func (r Record) Set(field string, value any) error {
	r[field] = value
	return nil
}

// ToFloat converts v to a float64 when it is a number or a numeric string.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Compare orders two field values. Nil sorts first, numbers compare
// numerically, strings lexically and booleans false before true. Mixed or
// unknown types fall back to comparing their printed form.
func Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}
	if isNumber(a) && isNumber(b) {
		af, _ := ToFloat(a)
		bf, _ := ToFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}
