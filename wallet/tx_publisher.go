// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"
)

// TxPublisher provides an interface for publishing transactions.
type TxPublisher interface {
	// Broadcast broadcasts a transaction to the network.
	Broadcast(ctx context.Context, tx *wire.MsgTx) (*chainhash.Hash, error)

	// PushRawTx broadcasts a hex encoded raw transaction.
	PushRawTx(ctx context.Context, rawTxHex string) (string, error)
}

// A compile time check to ensure that Wallet implements the interface.
var _ TxPublisher = (*Wallet)(nil)

// Broadcast pushes a fully signed transaction through the indexer. The
// transaction is not tracked afterwards, the returned hash is all the caller
// gets.
func (w *Wallet) Broadcast(ctx context.Context,
	tx *wire.MsgTx) (*chainhash.Hash, error) {

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("cannot serialize tx: %w", err)
	}

	txid := tx.TxHash()

	log.Tracef("Broadcasting tx %v: %v", txid, newLogClosure(
		func() string {
			return spew.Sdump(tx)
		}),
	)

	remoteID, err := w.PushRawTx(ctx, hex.EncodeToString(buf.Bytes()))
	if err != nil {
		log.Errorf("%v: broadcast failed: %v", txid, err)

		return nil, err
	}

	if remoteID != txid.String() {
		log.Warnf("Indexer reported txid %v for broadcast tx %v",
			remoteID, txid)
	}

	log.Infof("Broadcast tx %v", txid)

	return &txid, nil
}

// PushRawTx broadcasts a hex encoded raw transaction and returns the txid the
// indexer reports for it.
func (w *Wallet) PushRawTx(ctx context.Context,
	rawTxHex string) (string, error) {

	return w.cfg.Indexer.PushTx(ctx, rawTxHex)
}
