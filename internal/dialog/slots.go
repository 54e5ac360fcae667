// SPDX-License-Identifier: MIT

package dialog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Slots holds collected slot values keyed by slot name. Values are the
// raw JSON shapes the NLU emits: strings, numbers, booleans or objects
// such as {"value": 5000, "currency": "NGN"}.
type Slots map[string]any

// Merge overlays newer onto s key by key. Every key in newer replaces
// the stored value, empty or not; requirement checks decide usability,
// not the merge. Returns s for chaining; s is mutated in place.
func (s Slots) Merge(newer map[string]any) Slots {
	for k, v := range newer {
		s[k] = v
	}
	return s
}

// First returns the first present value among the given keys.
func (s Slots) First(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := s[k]; ok && present(v) {
			return v, true
		}
	}
	return nil, false
}

// FirstString is First coerced to a trimmed string. Numeric values are
// rendered without an exponent so account numbers survive the NLU
// emitting them as JSON numbers.
func (s Slots) FirstString(keys ...string) string {
	v, ok := s.First(keys...)
	if !ok {
		return ""
	}
	return coerceString(v)
}

// AmountValue extracts the transfer amount as whole currency units.
// Accepts a bare number, a numeric string ("5,000"), or an object with
// a "value" field. Returns false when absent or unparseable.
func (s Slots) AmountValue() (int64, bool) {
	v, ok := s.First("amount")
	if !ok {
		return 0, false
	}
	if m, isMap := v.(map[string]any); isMap {
		inner, innerOK := m["value"]
		if !innerOK {
			return 0, false
		}
		v = inner
	}
	return toInt64(v)
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		return t.String() != "" && t.String() != "0"
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || t < 0 {
			return 0, false
		}
		return int64(t), true
	case int:
		if t < 0 {
			return 0, false
		}
		return int64(t), true
	case int64:
		if t < 0 {
			return 0, false
		}
		return t, true
	case json.Number:
		n, err := t.Int64()
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		cleaned = strings.TrimPrefix(cleaned, "NGN")
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "₦"))
		n, err := strconv.ParseInt(cleaned, 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
