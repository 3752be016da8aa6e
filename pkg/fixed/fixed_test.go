package fixed_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/basketd/pkg/fixed"
)

func TestDivRnd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		x, y     string
		rnd      fixed.RoundingMode
		expected string
	}{
		{"exact floor", "1", "4", fixed.Floor, "0.25"},
		{"exact ceil", "1", "4", fixed.Ceil, "0.25"},
		{"inexact floor", "1", "3", fixed.Floor, "0.333333333333333333"},
		{"inexact ceil", "1", "3", fixed.Ceil, "0.333333333333333334"},
		{"inexact round down", "1", "3", fixed.Round, "0.333333333333333333"},
		{"inexact round up", "2", "3", fixed.Round, "0.666666666666666667"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fixed.MustParse(tt.x).DivRnd(fixed.MustParse(tt.y), tt.rnd)
			require.Equal(t, tt.expected, got.String())
		})
	}
}

func TestSaturation(t *testing.T) {
	t.Parallel()

	t.Run("division by zero", func(t *testing.T) {
		t.Parallel()
		require.True(t, fixed.One.Div(fixed.Zero).IsMax())
		require.True(t, fixed.One.MulDiv(fixed.One, fixed.Zero, fixed.Ceil).IsMax())
	})

	t.Run("multiplication overflow", func(t *testing.T) {
		t.Parallel()
		got := fixed.MaxValue.Mul(fixed.NewFromInt(2))
		require.True(t, got.IsMax())
	})

	t.Run("addition overflow", func(t *testing.T) {
		t.Parallel()
		got := fixed.MaxValue.Plus(fixed.One)
		require.True(t, got.IsMax())
	})

	t.Run("subtraction floors at zero", func(t *testing.T) {
		t.Parallel()
		got := fixed.One.Minus(fixed.NewFromInt(2))
		require.True(t, got.IsZero())
	})
}

func TestMulDiv(t *testing.T) {
	t.Parallel()

	a := fixed.MustParse("10")
	b := fixed.MustParse("1")
	c := fixed.MustParse("3")

	floor := a.MulDiv(b, c, fixed.Floor)
	ceil := a.MulDiv(b, c, fixed.Ceil)
	require.Equal(t, "3.333333333333333333", floor.String())
	require.Equal(t, "3.333333333333333334", ceil.String())
	require.True(t, ceil.Gt(floor))
}

func TestQuantize(t *testing.T) {
	t.Parallel()

	v := fixed.MustParse("1.234567")
	require.Equal(t, "1.23", v.Quantize(2, fixed.Floor).String())
	require.Equal(t, "1.24", v.Quantize(2, fixed.Ceil).String())
	require.Equal(t, "1.23", v.Quantize(2, fixed.Round).String())
	require.Equal(t, "1.234567", v.Quantize(18, fixed.Ceil).String())
}

func TestNewFromString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		value         string
		expectedError error
	}{
		{"negative", "-1", fixed.ErrNegative},
		{"overflow", "1e60", fixed.ErrOverflow},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := fixed.NewFromString(tt.value)
			require.EqualError(t, err, tt.expectedError.Error())
		})
	}

	v, err := fixed.NewFromString("0.0000000000000000019")
	require.NoError(t, err)
	require.Equal(t, "0.000000000000000001", v.String())
}

func TestJSON(t *testing.T) {
	t.Parallel()

	buf, err := json.Marshal(fixed.MustParse("1.5"))
	require.NoError(t, err)
	require.Equal(t, `"1.5"`, string(buf))

	var v fixed.Fix
	require.NoError(t, json.Unmarshal([]byte(`"2.25"`), &v))
	require.True(t, v.Eq(fixed.MustParse("2.25")))
}
