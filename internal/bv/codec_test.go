package bv

import (
	"fmt"
	"testing"

	"github.com/jaskrrish/Go-BV/internal/bv/quantum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		value    uint64
		width    int
		expected string
	}{
		{"Five in three bits", 5, 3, "101"},
		{"Four is MSB first", 4, 3, "100"},
		{"Zero padded", 1, 4, "0001"},
		{"Single bit", 1, 1, "1"},
		{"All ones", 1<<19 - 1, 19, "1111111111111111111"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bits, err := Encode(tt.value, tt.width)
			require.NoError(t, err)
			assert.Len(t, bits, tt.width)
			assert.Equal(t, tt.expected, FormatBits(bits))
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		width int
	}{
		{"Zero width", 0, 0},
		{"Negative width", 0, -1},
		{"Width too large", 0, MaxWidth + 1},
		{"Value does not fit", 8, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.value, tt.width)
			assert.ErrorIs(t, err, ErrRange)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for width := 1; width <= 10; width++ {
		t.Run(fmt.Sprintf("%d bits", width), func(t *testing.T) {
			for value := uint64(0); value < 1<<uint(width); value++ {
				bits, err := Encode(value, width)
				require.NoError(t, err)

				decoded, err := Decode(bits)
				require.NoError(t, err)
				require.Equal(t, value, decoded)
			}
		})
	}

	t.Run("Widest value", func(t *testing.T) {
		value := uint64(1)<<MaxWidth - 1
		bits, err := Encode(value, MaxWidth)
		require.NoError(t, err)

		decoded, err := Decode(bits)
		require.NoError(t, err)
		assert.Equal(t, value, decoded)
	})
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]quantum.Bit{quantum.One, quantum.Bit(2)})
	assert.ErrorIs(t, err, ErrRange)

	_, err = Decode(make([]quantum.Bit, MaxWidth+1))
	assert.ErrorIs(t, err, ErrRange)

	value, err := Decode(nil)
	require.NoError(t, err)
	assert.Zero(t, value)
}

func TestParseBits(t *testing.T) {
	bits, err := ParseBits("0110")
	require.NoError(t, err)
	assert.Equal(t, []quantum.Bit{quantum.Zero, quantum.One, quantum.One, quantum.Zero}, bits)
	assert.Equal(t, "0110", FormatBits(bits))

	_, err = ParseBits("01x0")
	assert.ErrorIs(t, err, ErrInput)
}
