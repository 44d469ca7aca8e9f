package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogerrors "github.com/moviedb/moviedb/internal/errors"
)

func TestParseRangeInt(t *testing.T) {
	tests := []struct {
		in     string
		lo, hi int
	}{
		{"1942", 1942, 1942},
		{" 1942 ", 1942, 1942},
		{"4240-4250", 4240, 4250},
		{"90 - 120", 90, 120},
		{"-5", -5, -5},
		{"-5-3", -5, 3},
		{"7-7", 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := ParseRangeInt(tt.in)
			require.NoError(t, err)
			lo, hi := r.Bounds()
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestParseRangeIntRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "12-", "-", "1-2-3", "1950-1940"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseRangeInt(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, catalogerrors.ErrInvalidInput)
		})
	}
}

func TestRangeIntContains(t *testing.T) {
	r := MustParseRangeInt("4240-4250")

	assert.True(t, r.Contains(4240))
	assert.True(t, r.Contains(4245))
	assert.True(t, r.Contains(4250))
	assert.False(t, r.Contains(4239))
	assert.False(t, r.Contains(4251))

	scalar := NewRangeInt(1999)
	assert.True(t, scalar.Contains(1999))
	assert.False(t, scalar.Contains(2000))
}

func TestRangeIntScalarCoercion(t *testing.T) {
	n, err := NewRangeInt(142).Int()
	require.NoError(t, err)
	assert.Equal(t, 142, n)

	r, err := NewRange(1, 2)
	require.NoError(t, err)
	assert.False(t, r.IsScalar())

	_, err = r.Int()
	require.Error(t, err)
	assert.True(t, catalogerrors.IsTypeError(err))
	assert.ErrorIs(t, err, catalogerrors.ErrNotScalar)
}

func TestNewRangeRejectsInvertedBounds(t *testing.T) {
	_, err := NewRange(10, 1)
	require.Error(t, err)
	assert.Equal(t, catalogerrors.KindValidation, catalogerrors.KindOf(err))
}

func TestRangeIntString(t *testing.T) {
	assert.Equal(t, "1942", NewRangeInt(1942).String())
	assert.Equal(t, "1950-1959", MustParseRangeInt("1950-1959").String())
	assert.Equal(t, MustParseRangeInt("1950-1959"), MustParseRangeInt("1950 - 1959"))
}

func TestMustParseRangeIntPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseRangeInt("nope") })
}
