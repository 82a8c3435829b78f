// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/assetwallet/pkg/btcunit"
	"github.com/btcsuite/btcd/btcutil"
)

var (
	// ErrFeeCeilingExceeded is returned when a fee rate is above the
	// configured ceiling.
	ErrFeeCeilingExceeded = errors.New("requested fee rate exceeds " +
		"configured ceiling")

	// ErrFeeTierUnavailable is returned when the fee summary does not
	// contain the default priority tier.
	ErrFeeTierUnavailable = errors.New("fee tier unavailable")

	// ErrInsufficientBalance is returned when the spendable outputs don't
	// cover the requested amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrChangeBelowDust is returned when a selection would leave a change
	// output that is non-zero but below the dust threshold.
	ErrChangeBelowDust = errors.New("the amount for change is too low, " +
		"please adjust the sending amount")

	// ErrAssetNotFound is returned when a referenced asset has no output.
	ErrAssetNotFound = errors.New("utxo not found")

	// ErrMixedAssetConflict is returned when an output carries more than
	// one indivisible asset and can't be moved as a unit.
	ErrMixedAssetConflict = errors.New("multiple inscriptions are mixed " +
		"together, split them first")

	// ErrAssetBelowDust is returned when an asset output can't be sent in
	// a batch because its value is below the destination dust threshold.
	ErrAssetBelowDust = errors.New("unable to send inscriptions to this " +
		"address in batches, send them one by one")

	// ErrSigningIncomplete is returned when an input owned by the wallet
	// could not be signed.
	ErrSigningIncomplete = errors.New("signing incomplete")

	// ErrSignInputMismatch is returned when a sign input names an address
	// or public key that is not the wallet's own.
	ErrSignInputMismatch = errors.New("sign input does not match wallet")

	// ErrInvalidSigHash is returned when a sign input carries an unknown
	// sighash type.
	ErrInvalidSigHash = errors.New("invalid sighash type")

	// ErrAmountOverflow is returned when a token amount does not fit the
	// range the protocol can encode.
	ErrAmountOverflow = errors.New("token amount overflow")

	// ErrNoSpendableUTXOs is returned when a send is attempted with an
	// empty set of candidate outputs.
	ErrNoSpendableUTXOs = errors.New("no spendable utxos")

	// ErrInvalidAmount is returned when a send amount is not positive.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUnknownAddressType is returned for an address type that is not
	// supported by the wallet.
	ErrUnknownAddressType = errors.New("unknown address type")
)

// FeeCeilingError carries the rate that was rejected by the fee governor.
type FeeCeilingError struct {
	// Rate is the offending fee rate.
	Rate btcunit.SatPerVByte

	// Ceiling is the configured maximum.
	Ceiling btcunit.SatPerVByte
}

// Error returns a human readable description of the rejected rate.
func (e *FeeCeilingError) Error() string {
	return fmt.Sprintf("%v: %v > %v", ErrFeeCeilingExceeded, e.Rate,
		e.Ceiling)
}

// Unwrap lets errors.Is match ErrFeeCeilingExceeded.
func (e *FeeCeilingError) Unwrap() error {
	return ErrFeeCeilingExceeded
}

// InsufficientBalanceError reports how much was missing for a plain funds
// spend.
type InsufficientBalanceError struct {
	// Available is the spendable balance.
	Available btcutil.Amount

	// Required is the amount that had to be covered.
	Required btcutil.Amount
}

// Error returns the shortfall in BTC.
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%v: %v more needed (have %v, want %v)",
		ErrInsufficientBalance, e.Required-e.Available, e.Available,
		e.Required)
}

// Unwrap lets errors.Is match ErrInsufficientBalance.
func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}
