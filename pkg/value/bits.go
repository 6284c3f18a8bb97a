package value

import (
	"fmt"
	"math/bits"
	"strings"
)

// Bit is one 4-state logic value.
type Bit uint8

const (
	Zero Bit = iota
	One
	Undef // x, don't-care
	HighZ // z
)

func (b Bit) String() string {
	switch b {
	case Zero:
		return "0"
	case One:
		return "1"
	case HighZ:
		return "z"
	default:
		return "x"
	}
}

// BitVector is a 4-state literal, least significant bit first.
type BitVector []Bit

// ParseBits parses a literal written most significant bit first.
// Accepted digits are 0, 1, x, z and the don't-care marker '-'.
func ParseBits(s string) (BitVector, error) {
	if s == "" {
		return nil, fmt.Errorf("value: empty bit literal")
	}
	bv := make(BitVector, len(s))
	for i := 0; i < len(s); i++ {
		var b Bit
		switch s[i] {
		case '0':
			b = Zero
		case '1':
			b = One
		case 'x', 'X', '-':
			b = Undef
		case 'z', 'Z':
			b = HighZ
		default:
			return nil, fmt.Errorf("value: invalid bit digit %q in %q", s[i], s)
		}
		bv[len(s)-1-i] = b
	}
	return bv, nil
}

// FromInt converts v to a bit vector. A width of zero uses the minimal
// number of bits (at least one).
func FromInt(v int64, width int) BitVector {
	u := uint64(v)
	if width <= 0 {
		width = bits.Len64(u)
		if width == 0 {
			width = 1
		}
	}
	bv := make(BitVector, width)
	for i := 0; i < width && i < 64; i++ {
		if u&(1<<uint(i)) != 0 {
			bv[i] = One
		}
	}
	if v < 0 {
		for i := 64; i < width; i++ {
			bv[i] = One
		}
	}
	return bv
}

// Len returns the number of bits.
func (bv BitVector) Len() int { return len(bv) }

// Test reports whether bit i is a defined one.
func (bv BitVector) Test(i int) bool {
	return i >= 0 && i < len(bv) && bv[i] == One
}

// Indeterminate reports whether every bit is undefined.
func (bv BitVector) Indeterminate() bool {
	if len(bv) == 0 {
		return false
	}
	for _, b := range bv {
		if b != Undef {
			return false
		}
	}
	return true
}

// Defined reports whether every bit is 0 or 1.
func (bv BitVector) Defined() bool {
	for _, b := range bv {
		if b != Zero && b != One {
			return false
		}
	}
	return true
}

// Ones returns the indices of all bits set to one, ascending.
func (bv BitVector) Ones() []int {
	var out []int
	for i, b := range bv {
		if b == One {
			out = append(out, i)
		}
	}
	return out
}

// Uint64 returns the defined value if it fits in 64 bits.
func (bv BitVector) Uint64() (uint64, bool) {
	var u uint64
	for i, b := range bv {
		switch b {
		case Zero:
		case One:
			if i >= 64 {
				return 0, false
			}
			u |= 1 << uint(i)
		default:
			return 0, false
		}
	}
	return u, true
}

// Resize zero-extends or truncates to n bits.
func (bv BitVector) Resize(n int) BitVector {
	out := make(BitVector, n)
	copy(out, bv)
	return out
}

// String renders the vector most significant bit first.
func (bv BitVector) String() string {
	var b strings.Builder
	for i := len(bv) - 1; i >= 0; i-- {
		b.WriteString(bv[i].String())
	}
	return b.String()
}
