// Package value normalizes the loosely typed leaf values found in synthesized
// netlist documents (parameter and attribute maps).
//
// Synthesis tools emit parameters as plain numbers, booleans, strings of
// binary digits ("00000000000000000000000000001000") or hexadecimal strings.
// Normalize turns any of these into a Value with one of a small set of kinds,
// and the Values accessors apply that normalization lazily with a caller
// supplied default for anything that does not decode.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the normalized representation of a Value.
type Kind uint8

const (
	KindNone   Kind = iota // absent or nil
	KindInt                // fits in 32 bits
	KindLong               // fits in 64 bits
	KindBool               // boolean
	KindReal               // non-integral number
	KindString             // string fallback
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindBool:
		return "bool"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	default:
		return "none"
	}
}

// Value is a normalized leaf value.
type Value struct {
	kind Kind
	num  int64
	real float64
	str  string
}

// Int returns a KindInt value.
func Int(v int32) Value { return Value{kind: KindInt, num: int64(v)} }

// Long returns a KindLong value.
func Long(v int64) Value { return Value{kind: KindLong, num: v} }

// Bool returns a KindBool value.
func Bool(v bool) Value {
	if v {
		return Value{kind: KindBool, num: 1}
	}
	return Value{kind: KindBool}
}

// String returns a KindString value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Kind reports the normalized kind.
func (v Value) Kind() Kind { return v.kind }

// IsNumber reports whether the value decoded to an integer of either width.
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindLong }

// Int64 returns the integer payload. Booleans convert to 0/1.
func (v Value) Int64() (int64, bool) {
	switch v.kind {
	case KindInt, KindLong, KindBool:
		return v.num, true
	}
	return 0, false
}

// Float returns the numeric payload as a float.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindInt, KindLong:
		return float64(v.num), true
	case KindReal:
		return v.real, true
	}
	return 0, false
}

// Truth interprets the value as a boolean. Integers are true when non-zero;
// strings accept "true" and "false" in any case.
func (v Value) Truth() (bool, bool) {
	switch v.kind {
	case KindBool, KindInt, KindLong:
		return v.num != 0, true
	case KindReal:
		return v.real != 0, true
	case KindString:
		switch {
		case strings.EqualFold(v.str, "true"):
			return true, true
		case strings.EqualFold(v.str, "false"):
			return false, true
		}
	}
	return false, false
}

func (v Value) String() string {
	switch v.kind {
	case KindInt, KindLong:
		return strconv.FormatInt(v.num, 10)
	case KindBool:
		return strconv.FormatBool(v.num != 0)
	case KindReal:
		return strconv.FormatFloat(v.real, 'g', -1, 64)
	case KindString:
		return v.str
	}
	return ""
}

// Normalize converts a raw document leaf into a Value. Numbers and booleans
// pass through, strings of binary digits or with a 0x prefix are decoded to
// the narrowest integer width that holds them, and everything else is kept
// as a string.
func Normalize(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Value{}
	case Value:
		return v
	case bool:
		return Bool(v)
	case int:
		return fromInt64(int64(v))
	case int8:
		return fromInt64(int64(v))
	case int16:
		return fromInt64(int64(v))
	case int32:
		return Int(v)
	case int64:
		return fromInt64(v)
	case uint:
		return fromUint64(uint64(v))
	case uint8:
		return fromInt64(int64(v))
	case uint16:
		return fromInt64(int64(v))
	case uint32:
		return fromInt64(int64(v))
	case uint64:
		return fromUint64(v)
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	case string:
		return normalizeString(v)
	case fmt.Stringer:
		return normalizeString(v.String())
	}
	return String(fmt.Sprint(raw))
}

func fromInt64(v int64) Value {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return Int(int32(v))
	}
	return Long(v)
}

func fromUint64(v uint64) Value {
	if v > math.MaxInt64 {
		return String(strconv.FormatUint(v, 10))
	}
	return fromInt64(int64(v))
}

func fromFloat(v float64) Value {
	if v == math.Trunc(v) && v >= math.MinInt64 && v <= math.MaxInt64 {
		return fromInt64(int64(v))
	}
	return Value{kind: KindReal, real: v}
}

func normalizeString(s string) Value {
	switch s {
	case "":
		return String("")
	case "0":
		return Int(0)
	case "1":
		return Int(1)
	}
	if isBinary(s) {
		if v, ok := decodeFixed(s, 2); ok {
			return v
		}
		return String(s)
	}
	if digits, ok := hexDigits(s); ok {
		if v, ok := decodeFixed(digits, 16); ok {
			return v
		}
	}
	return String(s)
}

// decodeFixed decodes a fixed-point literal into the smallest width that
// holds it. A 32-digit binary literal keeps its two's-complement meaning,
// matching how signed parameters are written; every other literal is
// unsigned. ok is false when the value does not fit in an int64.
func decodeFixed(digits string, base int) (Value, bool) {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return Int(0), true
	}
	u, err := strconv.ParseUint(trimmed, base, 64)
	if err != nil {
		return Value{}, false
	}
	switch {
	case base == 2 && len(digits) == 32:
		return Int(int32(uint32(u))), true
	case u <= math.MaxInt32:
		return Int(int32(u)), true
	case u <= math.MaxInt64:
		return Long(int64(u)), true
	}
	return Value{}, false
}

func isBinary(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return len(s) > 0
}

func hexDigits(s string) (string, bool) {
	if len(s) < 3 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return "", false
	}
	digits := s[2:]
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return "", false
		}
	}
	return digits, true
}
