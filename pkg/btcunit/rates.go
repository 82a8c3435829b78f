// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package btcunit provides fee rate and transaction size units used when
// pricing transactions.
package btcunit

import (
	"math"
	"math/big"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
)

const (
	// kilo is a generic multiplier for kilo units.
	kilo = 1000

	// floatStringPrecision is the number of decimal places used when a fee
	// rate is rendered as a string.
	floatStringPrecision = 3
)

var (
	// ZeroSatPerVByte is a fee rate of 0 sat/vb.
	ZeroSatPerVByte = NewSatPerVByte(0)

	// ZeroSatPerKVByte is a fee rate of 0 sat/kvb.
	ZeroSatPerKVByte = NewSatPerKVByte(0)
)

// baseFeeRate stores a fee rate as satoshis per kilo-weight-unit. Every
// exported rate type embeds it, so comparisons and fee calculations never go
// through a lossy intermediate unit.
type baseFeeRate struct {
	satsPerKWU *big.Rat
}

// newBaseFeeRate creates a baseFeeRate from a numerator and a denominator in
// weight units. A zero denominator yields a zero fee rate.
func newBaseFeeRate(numerator btcutil.Amount, denominator uint64) baseFeeRate {
	if denominator == 0 {
		return baseFeeRate{satsPerKWU: big.NewRat(0, 1)}
	}

	return baseFeeRate{satsPerKWU: big.NewRat(
		int64(numerator), capUint64(denominator),
	)}
}

// ToSatPerVByte converts the fee rate to sat/vb.
func (f baseFeeRate) ToSatPerVByte() SatPerVByte {
	return SatPerVByte{f}
}

// ToSatPerKVByte converts the fee rate to sat/kvb.
func (f baseFeeRate) ToSatPerKVByte() SatPerKVByte {
	return SatPerKVByte{f}
}

// FeeForWeightRoundUp returns the fee for the given weight, rounded up to the
// next whole satoshi.
func (f baseFeeRate) FeeForWeightRoundUp(wu WeightUnit) btcutil.Amount {
	fee := new(big.Rat).Mul(
		f.satsPerKWU, big.NewRat(capUint64(wu.wu), kilo),
	)

	// (num + denom - 1) / denom.
	result := new(big.Int).Add(fee.Num(), fee.Denom())
	result.Sub(result, big.NewInt(1))
	result.Quo(result, fee.Denom())

	return btcutil.Amount(result.Int64())
}

func (f baseFeeRate) cmp(other baseFeeRate) int {
	return f.satsPerKWU.Cmp(other.satsPerKWU)
}

// SatPerVByte represents a fee rate in sat/vbyte. This is the unit the
// indexer quotes fee tiers in and the unit the fee ceiling is configured in.
type SatPerVByte struct {
	baseFeeRate
}

// NewSatPerVByte creates a new fee rate in sat/vb.
func NewSatPerVByte(rate btcutil.Amount) SatPerVByte {
	return CalcSatPerVByte(rate, NewVByte(1))
}

// NewSatPerVByteFromFloat creates a fee rate from a possibly fractional
// sat/vb value as quoted by remote fee feeds. The value is kept with
// milli-satoshi precision. Negative and non-finite inputs yield a zero rate.
func NewSatPerVByteFromFloat(rate float64) SatPerVByte {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return ZeroSatPerVByte
	}

	milliSats := btcutil.Amount(math.Round(rate * kilo))

	return CalcSatPerVByte(milliSats, NewVByte(kilo))
}

// CalcSatPerVByte calculates the fee rate in sat/vb for a given fee and size.
func CalcSatPerVByte(fee btcutil.Amount, vb VByte) SatPerVByte {
	return SatPerVByte{newBaseFeeRate(fee*kilo, vb.wu)}
}

// String returns a human-readable string of the fee rate.
func (s SatPerVByte) String() string {
	vbRate := new(big.Rat).Mul(
		s.satsPerKWU, big.NewRat(blockchain.WitnessScaleFactor, kilo),
	)

	return vbRate.FloatString(floatStringPrecision) + " sat/vb"
}

// Float64 returns the fee rate in sat/vb as the nearest float, the form
// remote services quote and accept rates in.
func (s SatPerVByte) Float64() float64 {
	if s.satsPerKWU == nil {
		return 0
	}

	vbRate := new(big.Rat).Mul(
		s.satsPerKWU, big.NewRat(blockchain.WitnessScaleFactor, kilo),
	)
	f, _ := vbRate.Float64()

	return f
}

// Equal returns true if the fee rate is equal to the other fee rate.
func (s SatPerVByte) Equal(other SatPerVByte) bool {
	return s.cmp(other.baseFeeRate) == 0
}

// GreaterThan returns true if the fee rate is greater than the other fee rate.
func (s SatPerVByte) GreaterThan(other SatPerVByte) bool {
	return s.cmp(other.baseFeeRate) > 0
}

// LessThan returns true if the fee rate is less than the other fee rate.
func (s SatPerVByte) LessThan(other SatPerVByte) bool {
	return s.cmp(other.baseFeeRate) < 0
}

// IsZero returns true if the fee rate is zero.
func (s SatPerVByte) IsZero() bool {
	return s.satsPerKWU == nil || s.satsPerKWU.Sign() == 0
}

// SatPerKVByte represents a fee rate in sat/kvb. This is the unit expected by
// the txauthor and txrules packages.
type SatPerKVByte struct {
	baseFeeRate
}

// NewSatPerKVByte creates a new fee rate in sat/kvb.
func NewSatPerKVByte(rate btcutil.Amount) SatPerKVByte {
	return SatPerKVByte{newBaseFeeRate(
		rate*kilo, kilo*blockchain.WitnessScaleFactor,
	)}
}

// Val returns the fee rate as a whole number of satoshis per kilo-vbyte,
// rounded up so that fractional sat/vb rates never underpay.
func (s SatPerKVByte) Val() btcutil.Amount {
	kvbRate := new(big.Rat).Mul(
		s.satsPerKWU, big.NewRat(blockchain.WitnessScaleFactor, 1),
	)

	result := new(big.Int).Add(kvbRate.Num(), kvbRate.Denom())
	result.Sub(result, big.NewInt(1))
	result.Quo(result, kvbRate.Denom())

	return btcutil.Amount(result.Int64())
}

// String returns a human-readable string of the fee rate.
func (s SatPerKVByte) String() string {
	kvbRate := new(big.Rat).Mul(
		s.satsPerKWU, big.NewRat(blockchain.WitnessScaleFactor, 1),
	)

	return kvbRate.FloatString(floatStringPrecision) + " sat/kvb"
}

// Equal returns true if the fee rate is equal to the other fee rate.
func (s SatPerKVByte) Equal(other SatPerKVByte) bool {
	return s.cmp(other.baseFeeRate) == 0
}

// capUint64 converts a uint64 to an int64, capping at math.MaxInt64. Weights
// are bounded by consensus so the cap is never reached in practice.
func capUint64(u uint64) int64 {
	if u > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(u)
}
