// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/holiman/uint256"
)

// maxRuneAmount is the largest amount a runestone edict can carry.
var maxRuneAmount = new(uint256.Int).Sub(
	new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1),
)

// Selection is the outcome of a selector: a prefix of the candidates in
// listing order and what it accumulated.
type Selection struct {
	// UTXOs are the chosen outputs in accumulation order.
	UTXOs []UTXO

	// Total is the accumulated satoshi value.
	Total btcutil.Amount

	// Change is the satoshi value above the target, for selectors that
	// target a value.
	Change btcutil.Amount

	// TotalAmount and ChangeAmount are the accumulated and surplus token
	// amounts of a rune selection.
	TotalAmount  *uint256.Int
	ChangeAmount *uint256.Int
}

// SafeBalance returns the total value of the outputs that carry no asset.
func SafeBalance(utxos []UTXO) btcutil.Amount {
	var total btcutil.Amount
	for i := range utxos {
		if !utxos[i].HasAssets() {
			total += utxos[i].Value
		}
	}

	return total
}

// plainFunds returns the outputs that carry no asset, in listing order.
func plainFunds(utxos []UTXO) []UTXO {
	plain := make([]UTXO, 0, len(utxos))
	for _, utxo := range utxos {
		if !utxo.HasAssets() {
			plain = append(plain, utxo)
		}
	}

	return plain
}

// SelectPlainFunds walks the asset free outputs in order and stops at the
// first prefix whose value covers the target.
func SelectPlainFunds(utxos []UTXO, target btcutil.Amount) (*Selection,
	error) {

	if target <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, target)
	}

	sel := &Selection{}
	for _, utxo := range plainFunds(utxos) {
		if sel.Total >= target {
			break
		}

		sel.UTXOs = append(sel.UTXOs, utxo)
		sel.Total += utxo.Value
	}

	if sel.Total < target {
		return nil, &InsufficientBalanceError{
			Available: sel.Total,
			Required:  target,
		}
	}
	sel.Change = sel.Total - target

	return sel, nil
}

// SelectFungible accumulates the value of per-output fungible token outputs,
// such as atomicals FT, and stops at the first prefix that covers the target.
// A change that is neither zero nor at least dust is a hard stop: no further
// outputs are tried to find a cleaner split.
func SelectFungible(utxos []UTXO, target,
	dust btcutil.Amount) (*Selection, error) {

	if target <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, target)
	}

	sel := &Selection{}
	for _, utxo := range utxos {
		sel.UTXOs = append(sel.UTXOs, utxo)
		sel.Total += utxo.Value

		if sel.Total < target {
			continue
		}

		sel.Change = sel.Total - target
		if sel.Change != 0 && sel.Change < dust {
			return nil, fmt.Errorf("%w: change %d below dust %d",
				ErrChangeBelowDust, int64(sel.Change),
				int64(dust))
		}

		return sel, nil
	}

	return nil, fmt.Errorf("%w: have %d, want %d", ErrInsufficientBalance,
		int64(sel.Total), int64(target))
}

// SelectRunes accumulates the ledger amount of a rune and stops at the first
// prefix that covers the amount. Satoshi values play no part in the stop
// condition.
func SelectRunes(utxos []UTXO, runeID string,
	amount *uint256.Int) (*Selection, error) {

	if amount == nil || amount.IsZero() {
		return nil, fmt.Errorf("%w: zero rune amount", ErrInvalidAmount)
	}
	if amount.Gt(maxRuneAmount) {
		return nil, fmt.Errorf("%w: %v", ErrAmountOverflow, amount.Dec())
	}

	sel := &Selection{TotalAmount: new(uint256.Int)}
	for _, utxo := range utxos {
		_, overflow := sel.TotalAmount.AddOverflow(
			sel.TotalAmount, utxo.RuneAmount(runeID),
		)
		if overflow {
			return nil, fmt.Errorf("%w: total of %v", ErrAmountOverflow,
				runeID)
		}

		sel.UTXOs = append(sel.UTXOs, utxo)
		sel.Total += utxo.Value

		if sel.TotalAmount.Cmp(amount) >= 0 {
			sel.ChangeAmount = new(uint256.Int).Sub(
				sel.TotalAmount, amount,
			)

			return sel, nil
		}
	}

	return nil, fmt.Errorf("%w: have %v %v, want %v",
		ErrInsufficientBalance, sel.TotalAmount.Dec(), runeID,
		amount.Dec())
}

// ParseRuneAmount parses a base-10 rune amount that may not fit in 64 bits.
func ParseRuneAmount(s string) (*uint256.Int, error) {
	amount, err := uint256.FromDecimal(s)
	switch {
	case errors.Is(err, uint256.ErrBig256Range):
		return nil, fmt.Errorf("%w: %q", ErrAmountOverflow, s)

	case err != nil:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)

	case amount.Gt(maxRuneAmount):
		return nil, fmt.Errorf("%w: %q", ErrAmountOverflow, s)
	}

	return amount, nil
}
