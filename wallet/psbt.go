// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
)

// packetFromAuthored wraps an authored transaction in a PSBT whose inputs
// carry the utxo information the signer needs.
func (w *Wallet) packetFromAuthored(tx *txauthor.AuthoredTx) (*psbt.Packet,
	error) {

	packet, err := psbt.NewFromUnsignedTx(tx.Tx)
	if err != nil {
		return nil, fmt.Errorf("cannot create psbt: %w", err)
	}

	for idx := range packet.Inputs {
		utxo := wire.NewTxOut(
			int64(tx.PrevInputValues[idx]), tx.PrevScripts[idx],
		)
		w.decorateInput(&packet.Inputs[idx], utxo)
	}

	return packet, nil
}

// decorateInput adds the witness utxo of an input and, when the input pays
// to the wallet address, the script data required to sign for it.
func (w *Wallet) decorateInput(in *psbt.PInput, utxo *wire.TxOut) {
	in.WitnessUtxo = utxo

	if txscript.IsPayToTaproot(utxo.PkScript) {
		in.SighashType = txscript.SigHashDefault
	} else {
		in.SighashType = txscript.SigHashAll
	}

	if !bytes.Equal(utxo.PkScript, w.pkScript) {
		return
	}

	switch w.cfg.AddressType {
	// For nested P2WKH we need to add the redeem script to the input,
	// otherwise the signer can't prove the p2sh commitment.
	case AddressP2SHP2WPKH:
		in.RedeemScript = w.redeemScript

	case AddressP2TR:
		in.TaprootInternalKey = schnorr.SerializePubKey(w.pubKey)
	}
}

// PsbtPrevOutputFetcher returns a txscript.PrevOutFetcher built from the UTXO
// information in a PSBT packet.
func PsbtPrevOutputFetcher(packet *psbt.Packet) *txscript.MultiPrevOutFetcher {
	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for idx, txIn := range packet.UnsignedTx.TxIn {
		prevOut, ok := inputPrevOut(packet, idx)
		if !ok {
			continue
		}

		fetcher.AddPrevOut(txIn.PreviousOutPoint, prevOut)
	}

	return fetcher
}

// inputPrevOut returns the output spent by an input of the packet. The
// witness utxo is used when present, otherwise the output is read from the
// previous transaction.
func inputPrevOut(packet *psbt.Packet, idx int) (*wire.TxOut, bool) {
	in := &packet.Inputs[idx]

	if in.WitnessUtxo != nil {
		return in.WitnessUtxo, true
	}

	if in.NonWitnessUtxo != nil {
		prevIndex := packet.UnsignedTx.TxIn[idx].PreviousOutPoint.Index
		if int(prevIndex) < len(in.NonWitnessUtxo.TxOut) {
			return in.NonWitnessUtxo.TxOut[prevIndex], true
		}
	}

	return nil, false
}

// isFinalized reports whether an input already carries its final scripts.
func isFinalized(in *psbt.PInput) bool {
	return len(in.FinalScriptSig) > 0 || len(in.FinalScriptWitness) > 0
}

// clonePacket returns a deep copy of the packet.
func clonePacket(packet *psbt.Packet) (*psbt.Packet, error) {
	var buf bytes.Buffer
	if err := packet.Serialize(&buf); err != nil {
		return nil, err
	}

	return psbt.NewFromRawBytes(&buf, false)
}

// DecodePsbtHex decodes a hex encoded PSBT.
func DecodePsbtHex(s string) (*psbt.Packet, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid psbt hex: %w", err)
	}

	return psbt.NewFromRawBytes(bytes.NewReader(raw), false)
}

// EncodePsbtHex encodes a PSBT as hex.
func EncodePsbtHex(packet *psbt.Packet) (string, error) {
	var buf bytes.Buffer
	if err := packet.Serialize(&buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf.Bytes()), nil
}

// extractTx extracts the final transaction of a fully finalized packet.
func extractTx(packet *psbt.Packet) (*wire.MsgTx, error) {
	tx, err := psbt.Extract(packet)
	if err != nil {
		return nil, fmt.Errorf("cannot extract tx: %w", err)
	}

	return tx, nil
}
