// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"fmt"

	"github.com/btcsuite/assetwallet/pkg/btcunit"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// defaultFeeTier is the index of the fee summary tier used when no rate is
// requested. The summary is ordered cheapest first.
const defaultFeeTier = 1

// ResolveFeeRate returns the fee rate to build with. A requested rate is used
// as is, otherwise the default tier of the indexer fee summary is taken. The
// result is always checked against the configured ceiling.
func (w *Wallet) ResolveFeeRate(ctx context.Context,
	requested fn.Option[btcunit.SatPerVByte]) (btcunit.SatPerVByte, error) {

	rate, err := requested.UnwrapOrFuncErr(
		func() (btcunit.SatPerVByte, error) {
			return w.tierFeeRate(ctx)
		},
	)
	if err != nil {
		return btcunit.ZeroSatPerVByte, err
	}

	if err := w.CheckFeeRate(rate); err != nil {
		return btcunit.ZeroSatPerVByte, err
	}

	return rate, nil
}

// CheckFeeRate returns a FeeCeilingError if the rate exceeds the ceiling.
func (w *Wallet) CheckFeeRate(rate btcunit.SatPerVByte) error {
	ceiling := w.MaxFeeRate()
	if rate.GreaterThan(ceiling) {
		return &FeeCeilingError{Rate: rate, Ceiling: ceiling}
	}

	return nil
}

// MaxFeeRate returns the configured fee ceiling.
func (w *Wallet) MaxFeeRate() btcunit.SatPerVByte {
	return w.cfg.MaxFeeRate
}

// tierFeeRate reads the default tier of the indexer fee summary.
func (w *Wallet) tierFeeRate(ctx context.Context) (btcunit.SatPerVByte,
	error) {

	summary, err := w.cfg.Indexer.FeeSummary(ctx)
	if err != nil {
		return btcunit.ZeroSatPerVByte, err
	}

	if len(summary.List) <= defaultFeeTier {
		return btcunit.ZeroSatPerVByte, fmt.Errorf("%w: got %d tiers",
			ErrFeeTierUnavailable, len(summary.List))
	}

	tier := summary.List[defaultFeeTier]
	rate := btcunit.NewSatPerVByteFromFloat(tier.FeeRate)
	if rate.IsZero() {
		return btcunit.ZeroSatPerVByte, fmt.Errorf("%w: tier %q has "+
			"no rate", ErrFeeTierUnavailable, tier.Title)
	}

	log.Debugf("Using fee tier %q at %v", tier.Title, rate)

	return rate, nil
}
