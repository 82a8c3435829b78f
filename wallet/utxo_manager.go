// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/assetwallet/chain"
)

// ListSpendable returns every output of the wallet address as reported by
// the indexer, with the wallet key attached. Outputs in the mempool are
// dropped when the wallet runs in confirmed-only mode. No asset filtering is
// done here; that is up to the selectors.
func (w *Wallet) ListSpendable(ctx context.Context) ([]UTXO, error) {
	list, err := w.cfg.Indexer.BTCUtxos(ctx, w.address.EncodeAddress())
	if err != nil {
		return nil, err
	}

	utxos, err := utxosFromChain(list, w.pubKey)
	if err != nil {
		return nil, err
	}

	if !w.cfg.ConfirmedOnly {
		return utxos, nil
	}

	confirmed := utxos[:0]
	for _, utxo := range utxos {
		if utxo.Confirmed() {
			confirmed = append(confirmed, utxo)
		}
	}

	log.Tracef("Dropped %d unconfirmed outputs of %v",
		len(utxos)-len(confirmed), w.address)

	return confirmed, nil
}

// ListUnavailable returns the outputs of the wallet address that the indexer
// considers unsafe to spend.
func (w *Wallet) ListUnavailable(ctx context.Context) ([]UTXO, error) {
	list, err := w.cfg.Indexer.UnavailableUtxos(
		ctx, w.address.EncodeAddress(),
	)
	if err != nil {
		return nil, err
	}

	return utxosFromChain(list, w.pubKey)
}

// ListAtomicalsFTUTXOs returns the unspent outputs of the wallet holding the
// atomicals FT ticker.
func (w *Wallet) ListAtomicalsFTUTXOs(ctx context.Context,
	ticker string) ([]UTXO, error) {

	list, err := w.cfg.Indexer.Arc20Utxos(
		ctx, w.address.EncodeAddress(), ticker,
	)
	if err != nil {
		return nil, err
	}

	unspent := make([]chain.UTXO, 0, len(list))
	for _, utxo := range list {
		if !utxo.Spent {
			unspent = append(unspent, utxo)
		}
	}

	return utxosFromChain(unspent, w.pubKey)
}

// ListRuneUTXOs returns the outputs of the wallet holding the rune. Only the
// rune ledger is kept on the returned outputs.
func (w *Wallet) ListRuneUTXOs(ctx context.Context, runeID string) ([]UTXO,
	error) {

	list, err := w.cfg.Indexer.RunesUtxos(
		ctx, w.address.EncodeAddress(), runeID,
	)
	if err != nil {
		return nil, err
	}

	utxos, err := utxosFromChain(list, w.pubKey)
	if err != nil {
		return nil, err
	}

	for i := range utxos {
		utxos[i].Inscriptions = nil
		utxos[i].Atomicals = nil
	}

	return utxos, nil
}

// InscriptionUTXO returns the output holding the inscription.
func (w *Wallet) InscriptionUTXO(ctx context.Context,
	inscriptionID string) (*UTXO, error) {

	c, err := w.cfg.Indexer.InscriptionUtxo(ctx, inscriptionID)
	if err != nil {
		return nil, assetLookupErr(inscriptionID, err)
	}

	utxo, err := utxoFromChain(c, w.pubKey)
	if err != nil {
		return nil, err
	}

	return &utxo, nil
}

// InscriptionUTXOs returns the outputs holding the inscriptions.
func (w *Wallet) InscriptionUTXOs(ctx context.Context,
	inscriptionIDs []string) ([]UTXO, error) {

	list, err := w.cfg.Indexer.InscriptionUtxos(ctx, inscriptionIDs)
	if err != nil {
		return nil, assetLookupErr(fmt.Sprint(inscriptionIDs), err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrAssetNotFound,
			inscriptionIDs)
	}

	return utxosFromChain(list, w.pubKey)
}

// AtomicalUTXO returns the output holding the atomical.
func (w *Wallet) AtomicalUTXO(ctx context.Context, atomicalID string) (*UTXO,
	error) {

	c, err := w.cfg.Indexer.AtomicalsUtxo(ctx, atomicalID)
	if err != nil {
		return nil, assetLookupErr(atomicalID, err)
	}

	utxo, err := utxoFromChain(c, w.pubKey)
	if err != nil {
		return nil, err
	}

	return &utxo, nil
}

// assetLookupErr maps an empty indexer answer to ErrAssetNotFound and passes
// any other error through.
func assetLookupErr(id string, err error) error {
	if errors.Is(err, chain.ErrEmptyResponse) {
		return fmt.Errorf("%w: %v", ErrAssetNotFound, id)
	}

	return err
}
