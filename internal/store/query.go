package store

import (
	"sort"
	"strings"
	"time"
)

// applyQuery filters, sorts and limits records in memory. The bun-backed
// store pushes the same semantics into SQL; this path serves the memory
// store and keeps both implementations answerable to one contract.
func applyQuery(records []Record, q *Query) []Record {
	if q == nil {
		return records
	}

	out := records
	if q.Filter != nil {
		filtered := make([]Record, 0, len(out))
		for _, rec := range out {
			if matchFilter(rec, q.Filter) {
				filtered = append(filtered, rec)
			}
		}
		out = filtered
	}

	if q.Sort != nil {
		sortRecords(out, q.Sort)
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// matchFilter evaluates the single equality operator. A document without the
// field never matches, mirroring the remote store's treatment of missing
// fields.
func matchFilter(rec Record, f *Filter) bool {
	value, ok := rec[f.Field]
	if !ok {
		return false
	}
	return compareValues(value, f.Value) == 0
}

func sortRecords(records []Record, s *Sort) {
	desc := s.Direction == Desc
	sort.SliceStable(records, func(i, j int) bool {
		a, aok := records[i][s.Field]
		b, bok := records[j][s.Field]
		// Documents lacking the sort field order last regardless of direction.
		if !aok || !bok {
			return aok && !bok
		}
		cmp := compareValues(a, b)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// compareValues orders loosely-typed document values. Numeric values compare
// numerically across Go's JSON decode types, everything else falls back to
// string comparison.
func compareValues(a, b any) int {
	an, aIsNum := asFloat(a)
	bn, bIsNum := asFloat(b)
	if aIsNum && bIsNum {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}

	at, aIsTime := asTime(a)
	bt, bIsTime := asTime(b)
	if aIsTime && bIsTime {
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		default:
			return 0
		}
	}

	ab, aIsBool := a.(bool)
	bb, bIsBool := b.(bool)
	if aIsBool && bIsBool {
		switch {
		case ab == bb:
			return 0
		case bb:
			return -1
		default:
			return 1
		}
	}

	return strings.Compare(asString(a), asString(b))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339Nano)
	}
	return ""
}
