// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/btcsuite/assetwallet/chain"
	"github.com/btcsuite/assetwallet/pkg/btcunit"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	errIndexer = errors.New("indexer fail")

	// chainParams are the chain parameters used throughout the wallet
	// tests.
	chainParams = chaincfg.RegressionNetParams

	// tenSatPerVByte is the fee rate most tests build with.
	tenSatPerVByte = fn.Some(btcunit.NewSatPerVByte(10))

	allAddressTypes = []AddressType{
		AddressP2PKH, AddressP2WPKH, AddressP2TR, AddressP2SHP2WPKH,
	}
)

// testPrivKey returns a deterministic private key.
func testPrivKey(seed byte) *btcec.PrivateKey {
	var b [32]byte
	for i := range b {
		b[i] = seed
	}
	privKey, _ := btcec.PrivKeyFromBytes(b[:])

	return privKey
}

// newTestWallet creates a wallet of the given address type backed by a mock
// indexer.
func newTestWallet(t *testing.T, addrType AddressType) (*Wallet,
	*mockIndexer) {

	t.Helper()

	indexer := &mockIndexer{}
	w, err := New(&Config{
		ChainParams: &chainParams,
		PrivateKey:  testPrivKey(1),
		AddressType: addrType,
		Indexer:     indexer,
	})
	require.NoError(t, err)

	return w, indexer
}

// testAddress returns an address of the given type that does not belong to
// the test wallet.
func testAddress(t *testing.T, addrType AddressType) string {
	t.Helper()

	addr, err := deriveAddress(testPrivKey(2).PubKey(), addrType, &chainParams)
	require.NoError(t, err)

	return addr.EncodeAddress()
}

// testOutPoint returns a distinct outpoint for each n.
func testOutPoint(n int) wire.OutPoint {
	hash := chainhash.HashH([]byte{byte(n), byte(n >> 8), 0xab})
	return *wire.NewOutPoint(&hash, uint32(n%3))
}

// plainUTXO returns an asset free output of the wallet.
func plainUTXO(w *Wallet, n int, value btcutil.Amount) UTXO {
	return UTXO{
		OutPoint:    testOutPoint(n),
		Value:       value,
		PkScript:    w.pkScript,
		AddressType: w.cfg.AddressType,
		PubKey:      w.pubKey,
		Height:      100,
	}
}

// chainUTXO returns the indexer form of an output of the wallet.
func chainUTXO(w *Wallet, n int, value int64) chain.UTXO {
	op := testOutPoint(n)

	return chain.UTXO{
		TxID:        op.Hash.String(),
		Vout:        op.Index,
		Satoshis:    value,
		ScriptPk:    hex.EncodeToString(w.pkScript),
		AddressType: int(w.cfg.AddressType),
		Height:      100,
	}
}

// expectPush sets up the indexer to accept a broadcast and returns a pointer
// to the raw transaction it receives.
func expectPush(indexer *mockIndexer) *string {
	var raw string
	indexer.On("PushTx", mock.Anything, mock.Anything).Run(
		func(args mock.Arguments) {
			raw = args.String(1)
		},
	).Return("", nil).Once()

	return &raw
}

// prevOutsOf returns the outputs spent by the transaction, looked up by
// outpoint in the given outputs.
func prevOutsOf(t *testing.T, tx *wire.MsgTx, utxos ...UTXO) []*wire.TxOut {
	t.Helper()

	byOutPoint := make(map[wire.OutPoint]*wire.TxOut, len(utxos))
	for i := range utxos {
		byOutPoint[utxos[i].OutPoint] = utxos[i].TxOut()
	}

	prevOuts := make([]*wire.TxOut, 0, len(tx.TxIn))
	for _, txIn := range tx.TxIn {
		prevOut, ok := byOutPoint[txIn.PreviousOutPoint]
		require.Truef(t, ok, "unknown input %v", txIn.PreviousOutPoint)

		prevOuts = append(prevOuts, prevOut)
	}

	return prevOuts
}

// requireValidTx runs the script engine over every input of the transaction.
func requireValidTx(t *testing.T, tx *wire.MsgTx, prevOuts []*wire.TxOut) {
	t.Helper()

	require.Len(t, prevOuts, len(tx.TxIn))

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, txIn := range tx.TxIn {
		fetcher.AddPrevOut(txIn.PreviousOutPoint, prevOuts[i])
	}
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)

	for i := range tx.TxIn {
		vm, err := txscript.NewEngine(
			prevOuts[i].PkScript, tx, i, txscript.StandardVerifyFlags,
			nil, sigHashes, prevOuts[i].Value, fetcher,
		)
		require.NoError(t, err)
		require.NoErrorf(t, vm.Execute(), "input %d", i)
	}
}
