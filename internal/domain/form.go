package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Date layouts accepted for date and datetime fields.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = time.RFC3339
)

// FieldStore is the cleaned data of one submitted form. Rules only read it;
// a store is never modified during a validation pass.
//
// Values may be Code, string, bool, any integer or float type, json.Number,
// time.Time, []Choice, []Code, []string or the []any / map[string]any shapes
// produced by decoding JSON.
type FieldStore map[string]any

// NewFieldStore copies values into a new store so later changes to the
// caller's map cannot leak into a running validation.
func NewFieldStore(values map[string]any) FieldStore {
	store := make(FieldStore, len(values))
	for k, v := range values {
		store[k] = v
	}
	return store
}

// Get returns the raw value of field.
func (f FieldStore) Get(field string) any {
	return f[field]
}

// IsEmpty reports whether field is unanswered: absent, nil, a blank string or
// an empty selection. Numbers are never empty, so a stored 0 is an answer.
func (f FieldStore) IsEmpty(field string) bool {
	return isEmptyValue(f[field])
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case Code:
		return strings.TrimSpace(string(val)) == ""
	case json.Number:
		return val.String() == ""
	case time.Time:
		return val.IsZero()
	case *time.Time:
		return val == nil || val.IsZero()
	case []Choice:
		return len(val) == 0
	case []Code:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case *int:
		return val == nil
	case *float64:
		return val == nil
	default:
		return false
	}
}

// Code returns the value of a choice field, or "" when unanswered.
func (f FieldStore) Code(field string) Code {
	switch val := f[field].(type) {
	case Code:
		return val
	case string:
		return Code(val)
	case fmt.Stringer:
		return Code(val.String())
	default:
		return ""
	}
}

// Is reports whether the choice field holds exactly code.
func (f FieldStore) Is(field string, code Code) bool {
	return !f.IsEmpty(field) && f.Code(field) == code
}

// String returns the value of a free-text field.
func (f FieldStore) String(field string) string {
	switch val := f[field].(type) {
	case nil:
		return ""
	case string:
		return val
	case Code:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// Int returns an integer field value. The boolean is false when the field is
// unanswered or does not hold a whole number.
func (f FieldStore) Int(field string) (int, bool) {
	switch val := f[field].(type) {
	case int:
		return val, true
	case *int:
		if val == nil {
			return 0, false
		}
		return *val, true
	case int32:
		return int(val), true
	case int64:
		return int(val), true
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		return int(val), true
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Float returns a decimal field value.
func (f FieldStore) Float(field string) (float64, bool) {
	switch val := f[field].(type) {
	case float64:
		return val, true
	case *float64:
		if val == nil {
			return 0, false
		}
		return *val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		n, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// DateTime returns a datetime field value.
func (f FieldStore) DateTime(field string) (time.Time, bool) {
	switch val := f[field].(type) {
	case time.Time:
		return val, !val.IsZero()
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return *val, !val.IsZero()
	case string:
		return parseTime(val)
	default:
		return time.Time{}, false
	}
}

// Date returns a date field value truncated to midnight UTC. Datetime values
// are accepted and reduced to their calendar date.
func (f FieldStore) Date(field string) (time.Time, bool) {
	t, ok := f.DateTime(field)
	if !ok {
		return time.Time{}, false
	}
	return DateOf(t), true
}

// IsDateOnly reports whether field holds a value without a time component.
func (f FieldStore) IsDateOnly(field string) bool {
	s, ok := f[field].(string)
	if !ok {
		return false
	}
	_, err := time.Parse(DateLayout, strings.TrimSpace(s))
	return err == nil
}

// Selections returns the selected options of a multi-select field.
func (f FieldStore) Selections(field string) []Choice {
	switch val := f[field].(type) {
	case []Choice:
		return val
	case []Code:
		out := make([]Choice, 0, len(val))
		for _, code := range val {
			out = append(out, Choice{Name: code, DisplayName: string(code)})
		}
		return out
	case []string:
		out := make([]Choice, 0, len(val))
		for _, s := range val {
			out = append(out, Choice{Name: Code(s), DisplayName: s})
		}
		return out
	case []any:
		out := make([]Choice, 0, len(val))
		for _, item := range val {
			if choice, ok := choiceFromAny(item); ok {
				out = append(out, choice)
			}
		}
		return out
	default:
		return nil
	}
}

func choiceFromAny(item any) (Choice, bool) {
	switch v := item.(type) {
	case string:
		return Choice{Name: Code(v), DisplayName: v}, true
	case Code:
		return Choice{Name: v, DisplayName: string(v)}, true
	case Choice:
		return v, true
	case map[string]any:
		name, _ := v["name"].(string)
		if name == "" {
			return Choice{}, false
		}
		display, _ := v["display_name"].(string)
		if display == "" {
			display = name
		}
		return Choice{Name: Code(name), DisplayName: display}, true
	default:
		return Choice{}, false
	}
}

// SelectedCodes returns the names of the selected options of a multi-select
// field, in selection order.
func (f FieldStore) SelectedCodes(field string) []Code {
	selections := f.Selections(field)
	codes := make([]Code, 0, len(selections))
	for _, s := range selections {
		codes = append(codes, s.Name)
	}
	return codes
}

// Selected reports whether code is among the selections of field.
func (f FieldStore) Selected(field string, code Code) bool {
	for _, s := range f.Selections(field) {
		if s.Name == code {
			return true
		}
	}
	return false
}

// DateOf truncates t to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date the way messages show it to data-entry staff.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{DateTimeLayout, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04", DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
