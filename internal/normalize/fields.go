// Package normalize turns loosely-typed records from the remote backend, the
// local file or a request body into fully populated entities.
//
// Every field follows the same rule: a present, well-typed value is kept, a
// convertible value (numeric string, other integer width) is converted, and
// anything else is replaced by the field's default. Enum fields fall back to
// a fixed member. Every substitution is listed in the returned Report.
// Normalizing an already normalized record changes nothing.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"storefront/internal/domain"

	"github.com/spf13/cast"
)

// Report lists what normalization had to change in one record
type Report struct {
	Kind string
	ID   string
	// Defaulted holds field paths that were missing, mistyped or out of range
	Defaulted []string
	// Dropped holds sub-record paths that were discarded as placeholders
	Dropped []string
}

// Clean reports whether the record was already in normal form
func (r Report) Clean() bool {
	return len(r.Defaulted) == 0 && len(r.Dropped) == 0
}

// Func normalizes one raw record
type Func[T any] func(domain.Record) (T, Report)

// All normalizes every record, keeping input order
func All[T any](raws []domain.Record, fn Func[T]) ([]T, []Report) {
	out := make([]T, 0, len(raws))
	reports := make([]Report, 0, len(raws))
	for _, raw := range raws {
		v, report := fn(raw)
		out = append(out, v)
		reports = append(reports, report)
	}
	return out, reports
}

// ToRecord converts a typed entity back to its loose form
func ToRecord(v any) (domain.Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return rec, nil
}

// ToRecords converts a slice of typed entities
func ToRecords[T any](items []T) ([]domain.Record, error) {
	out := make([]domain.Record, 0, len(items))
	for _, item := range items {
		rec, err := ToRecord(item)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// fields reads one object, recording substitutions under prefix
type fields struct {
	raw    map[string]any
	prefix string
	report *Report
}

func newFields(kind string, raw domain.Record) fields {
	return fields{raw: raw, report: &Report{Kind: kind}}
}

func (f fields) path(key string) string {
	if f.prefix == "" {
		return key
	}
	return f.prefix + "." + key
}

func (f fields) mark(key string) {
	f.report.Defaulted = append(f.report.Defaulted, f.path(key))
}

func (f fields) drop(path string) {
	f.report.Dropped = append(f.report.Dropped, path)
}

func (f fields) value(key string) (any, bool) {
	v, ok := f.raw[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// str keeps strings, stringifies scalars and defaults everything else to ""
func (f fields) str(key string) string {
	v, ok := f.value(key)
	if !ok {
		f.mark(key)
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	switch v.(type) {
	case map[string]any, []any:
		f.mark(key)
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		f.mark(key)
		return ""
	}
	f.mark(key)
	return strings.TrimSpace(s)
}

// strOr is str with a computed fallback for empty values
func (f fields) strOr(key, fallback string) string {
	if s := f.str(key); s != "" {
		return s
	}
	if _, ok := f.value(key); ok {
		f.mark(key)
	}
	return fallback
}

func (f fields) float(key string) float64 {
	v, ok := f.value(key)
	if !ok {
		f.mark(key)
		return 0
	}
	if n, isNumber := f.number(key); isNumber {
		return n
	}
	f.mark(key)
	n, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// number accepts only values that are already numeric
func (f fields) number(key string) (float64, bool) {
	v, ok := f.value(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToFloat64(n), true
	case json.Number:
		x, err := n.Float64()
		return x, err == nil
	}
	return 0, false
}

func (f fields) integer(key string) int {
	v, ok := f.value(key)
	if !ok {
		f.mark(key)
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int8, int16, int32, int64, uint8, uint16, uint32:
		return cast.ToInt(n)
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			if i, fits := intFromFloat(n); fits {
				return i
			}
		}
	}
	f.mark(key)
	x, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	i, _ := intFromFloat(math.Trunc(x))
	return i
}

// intFromFloat converts an integral float, clamping to the int range.
// fits is false when clamping was needed.
func intFromFloat(x float64) (i int, fits bool) {
	switch {
	case x >= float64(math.MaxInt):
		return math.MaxInt, false
	case x < float64(math.MinInt):
		return math.MinInt, false
	}
	return int(x), true
}

func (f fields) boolean(key string) bool {
	v, ok := f.value(key)
	if !ok {
		f.mark(key)
		return false
	}
	if b, isBool := v.(bool); isBool {
		return b
	}
	f.mark(key)
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false
	}
	return b
}

// stringList keeps the non-empty string entries of an array
func (f fields) stringList(key string) []string {
	out := []string{}
	v, ok := f.value(key)
	if !ok {
		f.mark(key)
		return out
	}

	var items []any
	switch list := v.(type) {
	case []any:
		items = list
	case []string:
		for _, s := range list {
			items = append(items, s)
		}
	default:
		f.mark(key)
		return out
	}

	for i, item := range items {
		s, isString := item.(string)
		if s = strings.TrimSpace(s); !isString || s == "" {
			f.drop(fmt.Sprintf("%s[%d]", f.path(key), i))
			continue
		}
		out = append(out, s)
	}
	return out
}

// object returns the nested object at key, or an empty one
func (f fields) object(key string) fields {
	sub := fields{raw: map[string]any{}, prefix: f.path(key), report: f.report}
	v, ok := f.value(key)
	if !ok {
		f.mark(key)
		return sub
	}
	m, isMap := v.(map[string]any)
	if !isMap {
		f.mark(key)
		return sub
	}
	sub.raw = m
	return sub
}

// objects returns the object entries of an array; other entries are dropped
func (f fields) objects(key string) []fields {
	v, ok := f.value(key)
	if !ok {
		f.mark(key)
		return nil
	}

	var items []any
	switch list := v.(type) {
	case []any:
		items = list
	case []map[string]any:
		for _, m := range list {
			items = append(items, m)
		}
	default:
		f.mark(key)
		return nil
	}

	out := make([]fields, 0, len(items))
	for i, item := range items {
		prefix := fmt.Sprintf("%s[%d]", f.path(key), i)
		m, isMap := item.(map[string]any)
		if !isMap {
			f.drop(prefix)
			continue
		}
		out = append(out, fields{raw: m, prefix: prefix, report: f.report})
	}
	return out
}

// optionalFloat is float for fields with a computed fallback: ok is false
// when the value is missing or not convertible, and nothing is marked
func (f fields) optionalFloat(key string) (float64, bool) {
	if n, ok := f.number(key); ok {
		return n, true
	}
	v, ok := f.value(key)
	if !ok {
		return 0, false
	}
	n, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	f.mark(key)
	return n, true
}

// enum matches against allowed; allowed[0] is the default
func enum[T ~string](f fields, key string, allowed []T) T {
	if member, ok := lookupEnum(f, key, allowed); ok {
		return member
	}
	f.mark(key)
	return allowed[0]
}

// lookupEnum matches exactly, then case-insensitively. Only the
// case-insensitive match is recorded as a substitution.
func lookupEnum[T ~string](f fields, key string, allowed []T) (T, bool) {
	s, isString := f.raw[key].(string)
	if !isString {
		return "", false
	}
	s = strings.TrimSpace(s)
	for _, member := range allowed {
		if string(member) == s {
			return member, true
		}
	}
	for _, member := range allowed {
		if strings.EqualFold(string(member), s) {
			f.mark(key)
			return member, true
		}
	}
	return "", false
}

func (r Report) String() string {
	return fmt.Sprintf("%s %s: defaulted=%v dropped=%v", r.Kind, r.ID, r.Defaulted, r.Dropped)
}
