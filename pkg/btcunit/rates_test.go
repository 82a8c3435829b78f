// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcunit

import (
	"math"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

// TestFeeRateConversions checks that sat/vb and sat/kvb rates convert into
// each other without loss.
func TestFeeRateConversions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		vb          SatPerVByte
		expectedKVB btcutil.Amount
		expectedStr string
	}{
		{
			name:        "1 sat/vb",
			vb:          NewSatPerVByte(1),
			expectedKVB: 1000,
			expectedStr: "1.000 sat/vb",
		},
		{
			name:        "50 sat/vb",
			vb:          NewSatPerVByte(50),
			expectedKVB: 50_000,
			expectedStr: "50.000 sat/vb",
		},
		{
			name:        "fractional 1.5 sat/vb",
			vb:          NewSatPerVByteFromFloat(1.5),
			expectedKVB: 1500,
			expectedStr: "1.500 sat/vb",
		},
		{
			name:        "sub-milli rate rounds up per kvb",
			vb:          CalcSatPerVByte(1, NewVByte(3)),
			expectedKVB: 334,
			expectedStr: "0.333 sat/vb",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expectedKVB, tc.vb.ToSatPerKVByte().Val())
			require.Equal(t, tc.expectedStr, tc.vb.String())
		})
	}

	// A sat/kvb rate built directly equals the converted sat/vb rate.
	require.True(t, NewSatPerKVByte(2000).Equal(
		NewSatPerVByte(2).ToSatPerKVByte(),
	))
	require.Equal(t, "2000.000 sat/kvb", NewSatPerKVByte(2000).String())
}

// TestNewSatPerVByteFromFloat checks that invalid float inputs collapse to a
// zero rate.
func TestNewSatPerVByteFromFloat(t *testing.T) {
	t.Parallel()

	require.True(t, NewSatPerVByteFromFloat(-1).IsZero())
	require.True(t, NewSatPerVByteFromFloat(math.NaN()).IsZero())
	require.True(t, NewSatPerVByteFromFloat(math.Inf(1)).IsZero())
	require.True(t, NewSatPerVByteFromFloat(10).Equal(NewSatPerVByte(10)))

	require.Equal(t, 2.5, NewSatPerVByteFromFloat(2.5).Float64())
	require.Equal(t, 10.0, NewSatPerVByte(10).Float64())
	require.Zero(t, SatPerVByte{}.Float64())
}

// TestFeeRateComparison checks the ordering helpers.
func TestFeeRateComparison(t *testing.T) {
	t.Parallel()

	low := NewSatPerVByte(10)
	high := NewSatPerVByte(80)

	require.True(t, high.GreaterThan(low))
	require.True(t, low.LessThan(high))
	require.False(t, low.GreaterThan(low))
	require.True(t, low.Equal(NewSatPerVByte(10)))
}

// TestFeeCalculation checks that fees are rounded up to the next whole
// satoshi.
func TestFeeCalculation(t *testing.T) {
	t.Parallel()

	rate := NewSatPerVByteFromFloat(1.5)

	// 141 vb * 1.5 sat/vb = 211.5 sats.
	require.Equal(t, btcutil.Amount(212),
		rate.FeeForWeightRoundUp(NewVByte(141).ToWU()))

	// An exact product is not bumped.
	require.Equal(t, btcutil.Amount(282),
		NewSatPerVByte(2).FeeForWeightRoundUp(NewVByte(141).ToWU()))

	require.Equal(t, btcutil.Amount(0),
		ZeroSatPerVByte.FeeForWeightRoundUp(NewVByte(1000).ToWU()))
}
