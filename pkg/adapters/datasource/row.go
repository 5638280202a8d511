package datasource

import (
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Row maps column names to values in result-set column order.
// JSON encoding keeps that order.
type Row struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{m: orderedmap.New[string, any]()}
}

// RowOf builds a row from alternating key/value arguments.
// Non-string keys are formatted with fmt.Sprint; a trailing key without a value is dropped.
func RowOf(keyvals ...any) *Row {
	r := NewRow()
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		r.Set(key, keyvals[i+1])
	}
	return r
}

func (r *Row) ensure() {
	if r.m == nil {
		r.m = orderedmap.New[string, any]()
	}
}

// Set stores value under key. A new key is appended; an existing key keeps its position.
func (r *Row) Set(key string, value any) {
	r.ensure()
	r.m.Set(key, value)
}

// Get returns the value stored under key.
func (r *Row) Get(key string) (any, bool) {
	if r == nil || r.m == nil {
		return nil, false
	}
	return r.m.Get(key)
}

// Keys returns the column names in order.
func (r *Row) Keys() []string {
	if r == nil || r.m == nil {
		return []string{}
	}
	keys := make([]string, 0, r.m.Len())
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of columns.
func (r *Row) Len() int {
	if r == nil || r.m == nil {
		return 0
	}
	return r.m.Len()
}

// String returns the value under key as text, or "" when absent or NULL.
func (r *Row) String(key string) string {
	v, ok := r.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// Bool interprets the value under key as a flag.
// Catalog views report flags as booleans, integers or Y/N style text.
func (r *Row) Bool(key string) bool {
	v, ok := r.Get(key)
	if !ok || v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case int:
		return val != 0
	case int16:
		return val != 0
	case int32:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	}

	s := strings.TrimSpace(strings.ToUpper(r.String(key)))
	switch s {
	case "Y", "YES", "T", "TRUE":
		return true
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n != 0
	}
	return false
}

// ToMap copies the row into a plain map. Column order is lost.
func (r *Row) ToMap() map[string]any {
	out := make(map[string]any, r.Len())
	if r == nil || r.m == nil {
		return out
	}
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// MarshalJSON encodes the row as a JSON object in column order.
func (r *Row) MarshalJSON() ([]byte, error) {
	if r == nil || r.m == nil {
		return []byte("{}"), nil
	}
	return r.m.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object keeping key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	r.m = orderedmap.New[string, any]()
	return r.m.UnmarshalJSON(data)
}
