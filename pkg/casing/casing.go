// Package casing rewrites JSON-shaped values so every object key is
// lowerCamelCase. Keys listed in Options.PreserveKeys keep their inner keys
// verbatim; keys listed in Options.Opaque are passed through untouched.
package casing

import (
	"sort"
	"time"

	"github.com/iancoleman/strcase"
)

// TimestampLayout is the canonical rendering of date values.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Options controls which subtrees escape key rewriting.
type Options struct {
	// PreserveKeys names fields whose object value keeps its own keys as-is
	// (user-chosen names). Values below those keys are still normalized.
	PreserveKeys map[string]struct{}
	// Opaque names fields whose value is copied without any change.
	Opaque map[string]struct{}
}

// Keys builds a lookup set.
func Keys(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// CamelKey converts a snake_case or kebab-case key to lowerCamelCase.
// Keys already in camelCase are returned unchanged. Acronym runs count as
// one word, so partIDNumber becomes partIdNumber.
func CamelKey(key string) string {
	return strcase.ToLowerCamel(strcase.ToSnake(key))
}

// FormatTimestamp renders t in the canonical UTC form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Normalize returns a copy of v with object keys rewritten. v is expected
// to be built from map[string]interface{}, []interface{}, time.Time and
// primitives; anything else is returned as-is. Colliding keys resolve
// deterministically: source keys are visited in sorted order and the last
// one wins.
func Normalize(v interface{}, opts Options) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return normalizeObject(val, opts)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = Normalize(item, opts)
		}
		return out
	case time.Time:
		return FormatTimestamp(val)
	case *time.Time:
		if val == nil {
			return nil
		}
		return FormatTimestamp(*val)
	default:
		return v
	}
}

func normalizeObject(obj map[string]interface{}, opts Options) map[string]interface{} {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]interface{}, len(obj))
	for _, k := range keys {
		camel := CamelKey(k)
		value := obj[k]

		switch {
		case isMember(opts.Opaque, k) || isMember(opts.Opaque, camel):
			out[camel] = value
		case isMember(opts.PreserveKeys, k) || isMember(opts.PreserveKeys, camel):
			out[camel] = preserveKeys(value, opts)
		default:
			out[camel] = Normalize(value, opts)
		}
	}
	return out
}

// preserveKeys keeps the first level of keys but normalizes their values.
// The exception applies once: below it every key is rewritten.
func preserveKeys(v interface{}, opts Options) interface{} {
	inner := Options{Opaque: opts.Opaque}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return Normalize(v, inner)
	}
	out := make(map[string]interface{}, len(obj))
	for k, value := range obj {
		out[k] = Normalize(value, inner)
	}
	return out
}

func isMember(set map[string]struct{}, key string) bool {
	if set == nil {
		return false
	}
	_, ok := set[key]
	return ok
}
