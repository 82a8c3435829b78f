// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/assetwallet/chain"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/mempool"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/holiman/uint256"
)

// Inscription is an ordinals inscription bound to a sat of an output.
type Inscription struct {
	ID     string
	Number int64

	// Offset is the position of the inscribed sat within the output.
	Offset int64
}

// Atomical is an atomicals marker bound to an output.
type Atomical struct {
	ID     string
	Number int64
	Type   string
	Ticker string
	Value  int64
}

// RuneBalance is the amount of a single rune held by an output.
type RuneBalance struct {
	RuneID       string
	Rune         string
	SpacedRune   string
	Symbol       string
	Divisibility int
	Amount       *uint256.Int
}

// UTXO is an unspent output of the wallet together with the assets the
// indexer reports on it.
type UTXO struct {
	OutPoint    wire.OutPoint
	Value       btcutil.Amount
	PkScript    []byte
	AddressType AddressType

	// PubKey is the key that owns the output.
	PubKey *btcec.PublicKey

	Inscriptions []Inscription
	Atomicals    []Atomical
	Runes        []RuneBalance

	// Height is the confirmation height, chain.UnconfirmedHeight for
	// mempool outputs.
	Height int64
}

// HasAssets reports whether the output carries any asset marker. Such an
// output is never spent as plain funds.
func (u *UTXO) HasAssets() bool {
	return len(u.Inscriptions) > 0 || len(u.Atomicals) > 0 ||
		len(u.Runes) > 0
}

// Confirmed reports whether the output is mined.
func (u *UTXO) Confirmed() bool {
	return u.Height != chain.UnconfirmedHeight
}

// RuneAmount returns the amount of the rune held by the output.
func (u *UTXO) RuneAmount(runeID string) *uint256.Int {
	total := new(uint256.Int)
	for _, r := range u.Runes {
		if r.RuneID == runeID && r.Amount != nil {
			total.Add(total, r.Amount)
		}
	}

	return total
}

// TxOut returns the output being spent.
func (u *UTXO) TxOut() *wire.TxOut {
	return wire.NewTxOut(int64(u.Value), u.PkScript)
}

// String returns the outpoint of the output.
func (u *UTXO) String() string {
	return u.OutPoint.String()
}

// utxoFromChain converts an indexer output into a wallet UTXO owned by the
// given key.
func utxoFromChain(c *chain.UTXO, pubKey *btcec.PublicKey) (UTXO, error) {
	hash, err := chainhash.NewHashFromStr(c.TxID)
	if err != nil {
		return UTXO{}, fmt.Errorf("invalid txid %q: %w", c.TxID, err)
	}

	pkScript, err := hex.DecodeString(c.ScriptPk)
	if err != nil {
		return UTXO{}, fmt.Errorf("invalid script of %v:%d: %w", c.TxID,
			c.Vout, err)
	}

	utxo := UTXO{
		OutPoint:    *wire.NewOutPoint(hash, c.Vout),
		Value:       btcutil.Amount(c.Satoshis),
		PkScript:    pkScript,
		AddressType: AddressType(c.AddressType),
		PubKey:      pubKey,
		Height:      c.Height,
	}

	for _, ins := range c.Inscriptions {
		utxo.Inscriptions = append(utxo.Inscriptions, Inscription{
			ID:     ins.InscriptionID,
			Number: ins.InscriptionNumber,
			Offset: ins.Offset,
		})
	}

	for _, atom := range c.Atomicals {
		utxo.Atomicals = append(utxo.Atomicals, Atomical{
			ID:     atom.AtomicalID,
			Number: atom.AtomicalNumber,
			Type:   atom.Type,
			Ticker: atom.Ticker,
			Value:  atom.AtomicalValue,
		})
	}

	for _, r := range c.Runes {
		amount, err := ParseRuneAmount(r.Amount)
		if err != nil {
			return UTXO{}, fmt.Errorf("rune %v: %w", r.RuneID, err)
		}

		utxo.Runes = append(utxo.Runes, RuneBalance{
			RuneID:       r.RuneID,
			Rune:         r.Rune,
			SpacedRune:   r.SpacedRune,
			Symbol:       r.Symbol,
			Divisibility: r.Divisibility,
			Amount:       amount,
		})
	}

	return utxo, nil
}

// utxosFromChain converts a list of indexer outputs.
func utxosFromChain(list []chain.UTXO, pubKey *btcec.PublicKey) ([]UTXO,
	error) {

	utxos := make([]UTXO, 0, len(list))
	for i := range list {
		utxo, err := utxoFromChain(&list[i], pubKey)
		if err != nil {
			return nil, err
		}

		utxos = append(utxos, utxo)
	}

	return utxos, nil
}

// dustThreshold returns the smallest standard value of an output paying to
// the script at the default relay fee. That is 546 sats for p2pkh, 540 for
// p2sh, 330 for p2tr and 294 for p2wpkh.
func dustThreshold(pkScript []byte) btcutil.Amount {
	return btcutil.Amount(mempool.GetDustThreshold(
		&wire.TxOut{PkScript: pkScript},
	))
}

// addressDust returns the dust threshold of outputs paying to the address.
func addressDust(addr btcutil.Address) (btcutil.Amount, error) {
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return 0, err
	}

	return dustThreshold(pkScript), nil
}
