package value

import (
	"math"
	"sort"
)

// Values is a raw parameter or attribute map as read from the document.
// Accessors normalize on demand and never fail: anything that does not
// decode yields the supplied default.
type Values map[string]any

// Has reports whether the key is present.
func (vs Values) Has(key string) bool {
	_, ok := vs[key]
	return ok
}

// Get returns the normalized value stored under key.
func (vs Values) Get(key string) (Value, bool) {
	raw, ok := vs[key]
	if !ok {
		return Value{}, false
	}
	return Normalize(raw), true
}

// Int returns key as a 32-bit integer.
func (vs Values) Int(key string, def int) int {
	v, ok := vs.Get(key)
	if !ok {
		return def
	}
	n, ok := v.Int64()
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		return def
	}
	return int(n)
}

// Long returns key as a 64-bit integer.
func (vs Values) Long(key string, def int64) int64 {
	v, ok := vs.Get(key)
	if !ok {
		return def
	}
	n, ok := v.Int64()
	if !ok {
		return def
	}
	return n
}

// Bool returns key interpreted as a boolean ("1" is true here, and only here).
func (vs Values) Bool(key string, def bool) bool {
	v, ok := vs.Get(key)
	if !ok {
		return def
	}
	b, ok := v.Truth()
	if !ok {
		return def
	}
	return b
}

// String returns key as a string. Raw strings are returned verbatim.
func (vs Values) String(key string, def string) string {
	raw, ok := vs[key]
	if !ok || raw == nil {
		return def
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return Normalize(raw).String()
}

// Bits returns key as a 4-state bit vector.
func (vs Values) Bits(key string) (BitVector, bool) {
	raw, ok := vs[key]
	if !ok || raw == nil {
		return nil, false
	}
	if s, ok := raw.(string); ok {
		bv, err := ParseBits(s)
		if err != nil {
			return nil, false
		}
		return bv, true
	}
	n, ok := Normalize(raw).Int64()
	if !ok {
		return nil, false
	}
	return FromInt(n, 0), true
}

// Keys returns the keys in sorted order.
func (vs Values) Keys() []string {
	keys := make([]string, 0, len(vs))
	for k := range vs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
