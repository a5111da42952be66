package repository

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-folio/internal/registry"
	"github.com/goliatone/go-folio/internal/store"
)

// CoerceNumbers converts string-typed form inputs to numbers for fields the
// collection template declares numeric. HTML form values arrive as strings;
// without this, "3" would be stored where 3 belongs and break sorting on
// numeric keys like order.
func CoerceNumbers(collection string, fields store.Fields) store.Fields {
	shape := registry.DefaultShape(collection)
	if len(shape) == 0 || len(fields) == 0 {
		return fields
	}

	out := make(store.Fields, len(fields))
	for key, value := range fields {
		out[key] = value
		raw, isString := value.(string)
		if !isString {
			continue
		}
		switch shape[key].(type) {
		case int, int64:
			if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
				out[key] = n
			}
		case float64:
			if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
				out[key] = f
			}
		}
	}
	return out
}
