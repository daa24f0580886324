package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrice(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want float64
	}{
		{19.999, 20.00},
		{89.5, 89.5},
		{10, 10},
		{0.01, 0.01},
		{12.344, 12.34},
		{0.125, 0.13},
		{10.125, 10.13},
		{2.675, 2.68},
		{1.005, 1.00},
	} {
		got, err := NormalizePrice(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalizePrice_RejectsNonPositive(t *testing.T) {
	for _, in := range []float64{0, -1, -0.01, 0.004, math.NaN(), math.Inf(1)} {
		_, err := NormalizePrice(in)
		assert.ErrorIs(t, err, ErrInvalidPrice, in)
	}
}

func TestProductStatus_Valid(t *testing.T) {
	assert.True(t, ProductStatusActive.Valid())
	assert.True(t, ProductStatusInactive.Valid())
	assert.True(t, ProductStatusOutOfStock.Valid())
	assert.False(t, ProductStatus("deleted").Valid())
}
