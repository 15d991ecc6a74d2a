package bv

import (
	"fmt"
	"strings"

	"github.com/jaskrrish/Go-BV/internal/bv/quantum"
)

// MaxWidth is the widest bit list that fits a uint64 secret
const MaxWidth = 63

// Encode renders value as width bits, most significant first. Position i of
// the result holds bit (width-1-i) of value, so position 0 drives wire 0.
func Encode(value uint64, width int) ([]quantum.Bit, error) {
	if width <= 0 || width > MaxWidth {
		return nil, fmt.Errorf("%w: width %d not in [1, %d]", ErrRange, width, MaxWidth)
	}
	if value>>uint(width) != 0 {
		return nil, fmt.Errorf("%w: %d does not fit in %d bits", ErrRange, value, width)
	}

	bits := make([]quantum.Bit, width)
	for i := 0; i < width; i++ {
		bits[i] = quantum.Bit((value >> uint(width-1-i)) & 1)
	}
	return bits, nil
}

// Decode is the inverse of Encode
func Decode(bits []quantum.Bit) (uint64, error) {
	if len(bits) > MaxWidth {
		return 0, fmt.Errorf("%w: width %d exceeds %d", ErrRange, len(bits), MaxWidth)
	}

	var value uint64
	for i, b := range bits {
		if b != quantum.Zero && b != quantum.One {
			return 0, fmt.Errorf("%w: position %d holds %d", ErrRange, i, b)
		}
		value = value<<1 | uint64(b)
	}
	return value, nil
}

// FormatBits renders a bit list as a string, character i = position i
func FormatBits(bits []quantum.Bit) string {
	var sb strings.Builder
	sb.Grow(len(bits))
	for _, b := range bits {
		if b == quantum.One {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// ParseBits parses a string of '0' and '1' characters
func ParseBits(s string) ([]quantum.Bit, error) {
	bits := make([]quantum.Bit, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			bits[i] = quantum.Zero
		case '1':
			bits[i] = quantum.One
		default:
			return nil, fmt.Errorf("%w: %q is not a bitstring", ErrInput, s)
		}
	}
	return bits, nil
}
