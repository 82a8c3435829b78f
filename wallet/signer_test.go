// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/btcsuite/assetwallet/pkg/btcunit"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

// spendPacket returns a packet spending the given outputs into a single
// output to a foreign address. Only the witness utxo of each input is set.
func spendPacket(t *testing.T, prevOuts map[wire.OutPoint]*wire.TxOut,
	order ...wire.OutPoint) *psbt.Packet {

	t.Helper()

	dest, err := btcutil.DecodeAddress(
		testAddress(t, AddressP2WPKH), &chainParams,
	)
	require.NoError(t, err)
	destScript, err := txscript.PayToAddrScript(dest)
	require.NoError(t, err)

	tx := wire.NewMsgTx(txVersion)
	var total int64
	for i := range order {
		tx.AddTxIn(wire.NewTxIn(&order[i], nil, nil))
		total += prevOuts[order[i]].Value
	}
	tx.AddTxOut(wire.NewTxOut(total-1_000, destScript))

	packet, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)
	for i, op := range order {
		packet.Inputs[i].WitnessUtxo = prevOuts[op]
	}

	return packet
}

// serializePacket returns the raw bytes of a packet.
func serializePacket(t *testing.T, packet *psbt.Packet) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, packet.Serialize(&buf))

	return buf.Bytes()
}

// finalTx finalizes every input of the packet that isn't yet and extracts
// the transaction.
func finalTx(t *testing.T, packet *psbt.Packet) *wire.MsgTx {
	t.Helper()

	for i := range packet.Inputs {
		if !isFinalized(&packet.Inputs[i]) {
			require.NoError(t, psbt.Finalize(packet, i))
		}
	}

	tx, err := psbt.Extract(packet)
	require.NoError(t, err)

	return tx
}

// TestSignPsbtTaprootBackfill checks that a taproot input handed over
// without its internal key gets it backfilled and signed.
func TestSignPsbtTaprootBackfill(t *testing.T) {
	t.Parallel()

	w, _ := newTestWallet(t, AddressP2TR)
	utxo := plainUTXO(w, 0, 10_000)

	packet := spendPacket(t, map[wire.OutPoint]*wire.TxOut{
		utxo.OutPoint: utxo.TxOut(),
	}, utxo.OutPoint)
	require.Empty(t, packet.Inputs[0].TaprootInternalKey)

	res, err := w.SignPsbt(context.Background(), packet, &SignPsbtParams{
		AutoFinalize: fn.Some(false),
	})
	require.NoError(t, err)
	require.Equal(t, []uint32{0}, res.SignedInputs)

	in := packet.Inputs[0]
	require.Equal(t, schnorr.SerializePubKey(w.pubKey), in.TaprootInternalKey)
	require.Len(t, in.TaprootKeySpendSig, schnorr.SignatureSize)

	tx := finalTx(t, packet)
	requireValidTx(t, tx, []*wire.TxOut{utxo.TxOut()})
}

// TestSignPsbtTaprootMismatch checks that a taproot input paying to another
// key is neither backfilled nor signed, and that a failed call leaves the
// packet untouched.
func TestSignPsbtTaprootMismatch(t *testing.T) {
	t.Parallel()

	w, _ := newTestWallet(t, AddressP2TR)

	other, err := btcutil.DecodeAddress(
		testAddress(t, AddressP2TR), &chainParams,
	)
	require.NoError(t, err)
	otherScript, err := txscript.PayToAddrScript(other)
	require.NoError(t, err)

	op := testOutPoint(7)
	packet := spendPacket(t, map[wire.OutPoint]*wire.TxOut{
		op: wire.NewTxOut(10_000, otherScript),
	}, op)

	// Nothing in the packet belongs to the wallet.
	res, err := w.SignPsbt(context.Background(), packet, nil)
	require.NoError(t, err)
	require.Empty(t, res.SignedInputs)
	require.Empty(t, packet.Inputs[0].TaprootInternalKey)
	require.Empty(t, packet.Inputs[0].TaprootKeySpendSig)

	// Asking for the input explicitly fails without touching the packet.
	before := serializePacket(t, packet)
	_, err = w.SignPsbt(context.Background(), packet, &SignPsbtParams{
		Inputs: []SignInputSpec{ByIndexAndAddress{
			Index:   0,
			Address: w.Address().EncodeAddress(),
		}},
	})
	require.ErrorIs(t, err, ErrSigningIncomplete)
	require.Equal(t, before, serializePacket(t, packet))
}

// TestSignAuthoredAddressTypes builds, signs and verifies a transfer for
// every address type.
func TestSignAuthoredAddressTypes(t *testing.T) {
	t.Parallel()

	for _, addrType := range allAddressTypes {
		t.Run(addrType.String(), func(t *testing.T) {
			t.Parallel()

			w, _ := newTestWallet(t, addrType)
			utxos := []UTXO{
				plainUTXO(w, 0, 20_000),
				plainUTXO(w, 1, 30_000),
			}

			dest, err := w.destination(testAddress(t, AddressP2TR))
			require.NoError(t, err)

			authored, err := w.createTransferTx(&txIntent{
				outputs: []*wire.TxOut{
					wire.NewTxOut(25_000, dest),
				},
				candidates: utxos,
				feeRate:    btcunit.NewSatPerVByte(10),
			})
			require.NoError(t, err)
			require.Len(t, authored.Tx.TxIn, 2)

			tx, err := w.signAuthored(context.Background(), authored)
			require.NoError(t, err)
			requireValidTx(t, tx, prevOutsOf(t, tx, utxos...))

			// The legacy guard is released once signing is done.
			require.False(t, w.legacy.allowed())
		})
	}
}

// TestSignPsbtLegacyWithPrevTx checks that a p2pkh input carrying its
// previous transaction is signed through the updater.
func TestSignPsbtLegacyWithPrevTx(t *testing.T) {
	t.Parallel()

	w, _ := newTestWallet(t, AddressP2PKH)

	prevTx := wire.NewMsgTx(txVersion)
	prevTx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 1}, nil, nil))
	prevTx.AddTxOut(wire.NewTxOut(1_000, w.pkScript))
	prevTx.AddTxOut(wire.NewTxOut(40_000, w.pkScript))

	op := wire.OutPoint{Hash: prevTx.TxHash(), Index: 1}
	packet := spendPacket(t, map[wire.OutPoint]*wire.TxOut{
		op: prevTx.TxOut[1],
	}, op)
	packet.Inputs[0].NonWitnessUtxo = prevTx

	res, err := w.SignPsbt(context.Background(), packet, nil)
	require.NoError(t, err)
	require.Equal(t, []uint32{0}, res.SignedInputs)
	require.NotEmpty(t, packet.Inputs[0].FinalScriptSig)

	tx := finalTx(t, packet)
	requireValidTx(t, tx, []*wire.TxOut{prevTx.TxOut[1]})
}

// TestSignLegacyOutsideGuard checks that a p2pkh input with only a witness
// utxo is refused unless the legacy guard is held.
func TestSignLegacyOutsideGuard(t *testing.T) {
	t.Parallel()

	w, _ := newTestWallet(t, AddressP2PKH)
	utxo := plainUTXO(w, 0, 10_000)

	packet := spendPacket(t, map[wire.OutPoint]*wire.TxOut{
		utxo.OutPoint: utxo.TxOut(),
	}, utxo.OutPoint)

	fetcher := PsbtPrevOutputFetcher(packet)
	updater, err := psbt.NewUpdater(packet)
	require.NoError(t, err)

	desc := &signDescriptor{
		input:     SignInput{Index: 0},
		packet:    packet,
		updater:   updater,
		fetcher:   fetcher,
		sigHashes: txscript.NewTxSigHashes(packet.UnsignedTx, fetcher),
	}
	require.ErrorIs(t, w.signInput(desc), ErrSigningIncomplete)

	release := w.legacy.enable()
	require.NoError(t, w.signInput(desc))
	release()

	require.False(t, w.legacy.allowed())
	require.Len(t, packet.Inputs[0].PartialSigs, 1)
}

// TestLegacyGuardReleasedOnFailure checks that a failing call on a wallet
// authored packet releases the legacy guard so the next call can proceed.
func TestLegacyGuardReleasedOnFailure(t *testing.T) {
	t.Parallel()

	w, _ := newTestWallet(t, AddressP2PKH)
	utxo := plainUTXO(w, 0, 10_000)

	packet := spendPacket(t, map[wire.OutPoint]*wire.TxOut{
		utxo.OutPoint: utxo.TxOut(),
	}, utxo.OutPoint)
	packet.Inputs[0].SighashType = txscript.SigHashAll

	_, err := w.signPsbt(packet, &SignPsbtParams{
		Inputs: []SignInputSpec{ByIndexAndPublicKey{
			Index:        0,
			PublicKey:    w.PubKeyHex(),
			SigHashTypes: []txscript.SigHashType{txscript.SigHashNone},
		}},
	}, true)
	require.ErrorIs(t, err, ErrInvalidSigHash)
	require.False(t, w.legacy.allowed())
	require.Empty(t, packet.Inputs[0].PartialSigs)

	res, err := w.signPsbt(packet, nil, true)
	require.NoError(t, err)
	require.Equal(t, []uint32{0}, res.SignedInputs)
	require.False(t, w.legacy.allowed())

	tx := finalTx(t, packet)
	requireValidTx(t, tx, []*wire.TxOut{utxo.TxOut()})
}

// TestSignPsbtRefusesBareLegacy checks that a packet handed to SignPsbt
// from outside can't have its legacy inputs signed without the previous
// transaction, and that the guard is never taken for it.
func TestSignPsbtRefusesBareLegacy(t *testing.T) {
	t.Parallel()

	w, _ := newTestWallet(t, AddressP2PKH)
	utxo := plainUTXO(w, 0, 10_000)

	packet := spendPacket(t, map[wire.OutPoint]*wire.TxOut{
		utxo.OutPoint: utxo.TxOut(),
	}, utxo.OutPoint)
	before := serializePacket(t, packet)

	_, err := w.SignPsbt(context.Background(), packet, nil)
	require.ErrorIs(t, err, ErrSigningIncomplete)
	require.False(t, w.legacy.allowed())
	require.Equal(t, before, serializePacket(t, packet))
}

// TestInputPrevOutPrefersWitnessUtxo checks that the witness utxo decides
// the spent output when the attached previous transaction disagrees with
// it, both for the derived sign inputs and for the signature itself.
func TestInputPrevOutPrefersWitnessUtxo(t *testing.T) {
	t.Parallel()

	w, _ := newTestWallet(t, AddressP2WPKH)

	other, err := btcutil.DecodeAddress(
		testAddress(t, AddressP2TR), &chainParams,
	)
	require.NoError(t, err)
	otherScript, err := txscript.PayToAddrScript(other)
	require.NoError(t, err)

	// The previous transaction pays a foreign taproot key at the spent
	// index while the witness utxo pays the wallet.
	prevTx := wire.NewMsgTx(txVersion)
	prevTx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 3}, nil, nil))
	prevTx.AddTxOut(wire.NewTxOut(7_000, otherScript))

	own := wire.NewTxOut(10_000, w.pkScript)
	op := wire.OutPoint{Hash: prevTx.TxHash(), Index: 0}
	packet := spendPacket(t, map[wire.OutPoint]*wire.TxOut{
		op: own,
	}, op)
	packet.Inputs[0].NonWitnessUtxo = prevTx

	prevOut, ok := inputPrevOut(packet, 0)
	require.True(t, ok)
	require.Equal(t, own.PkScript, prevOut.PkScript)
	require.Equal(t, own.Value, prevOut.Value)

	require.Equal(t, []SignInput{{Index: 0}}, w.deriveSignInputs(packet))

	fetcher := PsbtPrevOutputFetcher(packet)
	require.Equal(t, own, fetcher.FetchPrevOutput(op))

	// Without the witness utxo the previous transaction is used.
	packet.Inputs[0].WitnessUtxo = nil
	prevOut, ok = inputPrevOut(packet, 0)
	require.True(t, ok)
	require.Equal(t, otherScript, prevOut.PkScript)
	require.Empty(t, w.deriveSignInputs(packet))
}

// TestTaprootBackfillFromPrevTx checks that a taproot input carrying only
// its previous transaction gets the internal key backfilled, and that a
// foreign output is left alone.
func TestTaprootBackfillFromPrevTx(t *testing.T) {
	t.Parallel()

	w, _ := newTestWallet(t, AddressP2TR)

	other, err := btcutil.DecodeAddress(
		testAddress(t, AddressP2TR), &chainParams,
	)
	require.NoError(t, err)
	otherScript, err := txscript.PayToAddrScript(other)
	require.NoError(t, err)

	prevTx := wire.NewMsgTx(txVersion)
	prevTx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 2}, nil, nil))
	prevTx.AddTxOut(wire.NewTxOut(10_000, w.pkScript))
	prevTx.AddTxOut(wire.NewTxOut(20_000, otherScript))

	own := wire.OutPoint{Hash: prevTx.TxHash(), Index: 0}
	foreign := wire.OutPoint{Hash: prevTx.TxHash(), Index: 1}
	packet := spendPacket(t, map[wire.OutPoint]*wire.TxOut{
		own:     prevTx.TxOut[0],
		foreign: prevTx.TxOut[1],
	}, own, foreign)
	for i := range packet.Inputs {
		packet.Inputs[i].WitnessUtxo = nil
		packet.Inputs[i].NonWitnessUtxo = prevTx
	}

	require.NoError(t, w.backfillTaprootInternalKeys(packet))
	require.Equal(
		t, schnorr.SerializePubKey(w.pubKey),
		packet.Inputs[0].TaprootInternalKey,
	)
	require.Empty(t, packet.Inputs[1].TaprootInternalKey)
}

// TestSignPsbtUntweaked checks signing of a taproot output whose key is the
// untweaked wallet key.
func TestSignPsbtUntweaked(t *testing.T) {
	t.Parallel()

	w, _ := newTestWallet(t, AddressP2TR)

	script, err := txscript.PayToTaprootScript(w.pubKey)
	require.NoError(t, err)

	op := testOutPoint(3)
	prevOut := wire.NewTxOut(15_000, script)
	packet := spendPacket(t, map[wire.OutPoint]*wire.TxOut{op: prevOut}, op)

	_, err = w.SignPsbt(context.Background(), packet, &SignPsbtParams{
		Inputs: []SignInputSpec{ByIndexAndPublicKey{
			Index:              0,
			PublicKey:          strings.ToUpper(w.PubKeyHex()),
			DisableTweakSigner: true,
		}},
	})
	require.NoError(t, err)
	require.Empty(t, packet.Inputs[0].TaprootInternalKey)

	tx := finalTx(t, packet)
	requireValidTx(t, tx, []*wire.TxOut{prevOut})
}

// TestSignPsbtMissingUtxo checks that an input without utxo information is
// an error rather than a crash.
func TestSignPsbtMissingUtxo(t *testing.T) {
	t.Parallel()

	w, _ := newTestWallet(t, AddressP2WPKH)
	utxo := plainUTXO(w, 0, 10_000)

	packet := spendPacket(t, map[wire.OutPoint]*wire.TxOut{
		utxo.OutPoint: utxo.TxOut(),
	}, utxo.OutPoint)
	packet.Inputs[0].WitnessUtxo = nil

	_, err := w.SignPsbt(context.Background(), packet, &SignPsbtParams{
		Inputs: []SignInputSpec{ByIndexAndAddress{
			Index:   0,
			Address: w.Address().EncodeAddress(),
		}},
	})
	require.ErrorIs(t, err, ErrMissingInputUtxo)
}

// TestNewSignInputs checks the validation of caller supplied sign inputs.
func TestNewSignInputs(t *testing.T) {
	t.Parallel()

	w, _ := newTestWallet(t, AddressP2WPKH)
	utxo := plainUTXO(w, 0, 10_000)
	packet := spendPacket(t, map[wire.OutPoint]*wire.TxOut{
		utxo.OutPoint: utxo.TxOut(),
	}, utxo.OutPoint)

	address := w.Address().EncodeAddress()

	testCases := []struct {
		name    string
		spec    SignInputSpec
		wantErr error
	}{
		{
			name: "by address",
			spec: ByIndexAndAddress{
				Index:   0,
				Address: address,
				SigHashTypes: []txscript.SigHashType{
					txscript.SigHashAll,
					txscript.SigHashSingle |
						txscript.SigHashAnyOneCanPay,
				},
			},
		},
		{
			name: "by public key",
			spec: ByIndexAndPublicKey{
				Index:     0,
				PublicKey: w.PubKeyHex(),
			},
		},
		{
			name: "index out of range",
			spec: ByIndexAndAddress{
				Index:   1,
				Address: address,
			},
			wantErr: ErrInputIndexOutOfRange,
		},
		{
			name: "negative index",
			spec: ByIndexAndAddress{
				Index:   -1,
				Address: address,
			},
			wantErr: ErrInputIndexOutOfRange,
		},
		{
			name: "foreign address",
			spec: ByIndexAndAddress{
				Index:   0,
				Address: testAddress(t, AddressP2WPKH),
			},
			wantErr: ErrSignInputMismatch,
		},
		{
			name: "foreign public key",
			spec: ByIndexAndPublicKey{
				Index:     0,
				PublicKey: "02" + strings.Repeat("11", 32),
			},
			wantErr: ErrSignInputMismatch,
		},
		{
			name: "unknown sighash",
			spec: ByIndexAndAddress{
				Index:   0,
				Address: address,
				SigHashTypes: []txscript.SigHashType{
					txscript.SigHashType(0x04),
				},
			},
			wantErr: ErrInvalidSigHash,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			inputs, err := w.NewSignInputs(
				packet, []SignInputSpec{tc.spec},
			)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Len(t, inputs, 1)
			require.Equal(t, tc.spec.inputIndex(), inputs[0].Index)
		})
	}
}
