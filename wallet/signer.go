// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	// ErrMissingInputUtxo is returned when an input of a packet to sign
	// has neither a witness nor a non-witness utxo.
	ErrMissingInputUtxo = errors.New("psbt input has no utxo information")

	// ErrInputIndexOutOfRange is returned when a sign input refers to an
	// input the packet does not have.
	ErrInputIndexOutOfRange = errors.New("input index out of range")
)

// SignInputSpec names an input of a packet the caller wants signed. It is
// either a ByIndexAndAddress or a ByIndexAndPublicKey.
type SignInputSpec interface {
	// inputIndex returns the index of the input.
	inputIndex() int

	// options returns the signing options of the input.
	options() ([]txscript.SigHashType, bool)

	// owner checks that the spec names the wallet as the signer.
	owner(w *Wallet) error
}

// ByIndexAndAddress asks for an input to be signed by the key of an address,
// which must be the wallet address.
type ByIndexAndAddress struct {
	Index   int
	Address string

	// SigHashTypes restricts the sighash types allowed for the input.
	SigHashTypes []txscript.SigHashType

	// DisableTweakSigner signs a taproot input with the untweaked key.
	DisableTweakSigner bool
}

func (b ByIndexAndAddress) inputIndex() int { return b.Index }

func (b ByIndexAndAddress) options() ([]txscript.SigHashType, bool) {
	return b.SigHashTypes, b.DisableTweakSigner
}

func (b ByIndexAndAddress) owner(w *Wallet) error {
	if b.Address != w.address.EncodeAddress() {
		return fmt.Errorf("%w: address %v", ErrSignInputMismatch,
			b.Address)
	}

	return nil
}

// ByIndexAndPublicKey asks for an input to be signed by a public key, which
// must be the wallet key.
type ByIndexAndPublicKey struct {
	Index int

	// PublicKey is the hex encoded compressed public key.
	PublicKey string

	// SigHashTypes restricts the sighash types allowed for the input.
	SigHashTypes []txscript.SigHashType

	// DisableTweakSigner signs a taproot input with the untweaked key.
	DisableTweakSigner bool
}

func (b ByIndexAndPublicKey) inputIndex() int { return b.Index }

func (b ByIndexAndPublicKey) options() ([]txscript.SigHashType, bool) {
	return b.SigHashTypes, b.DisableTweakSigner
}

func (b ByIndexAndPublicKey) owner(w *Wallet) error {
	if !strings.EqualFold(b.PublicKey, w.PubKeyHex()) {
		return fmt.Errorf("%w: public key %v", ErrSignInputMismatch,
			b.PublicKey)
	}

	return nil
}

// A compile time check to ensure both specs implement the interface.
var (
	_ SignInputSpec = ByIndexAndAddress{}
	_ SignInputSpec = ByIndexAndPublicKey{}
)

// SignInput is a validated request to sign one input with the wallet key.
type SignInput struct {
	Index              int
	SigHashTypes       []txscript.SigHashType
	DisableTweakSigner bool
}

// SignPsbtParams holds the parameters of SignPsbt.
type SignPsbtParams struct {
	// Inputs lists the inputs to sign. When empty, every unsigned input
	// paying to the wallet address is signed.
	Inputs []SignInputSpec

	// AutoFinalize finalizes every signed input. It defaults to true.
	AutoFinalize fn.Option[bool]
}

// SignPsbtResult holds the result of SignPsbt.
type SignPsbtResult struct {
	// SignedInputs are the indices of the inputs that were signed.
	SignedInputs []uint32

	// Packet is the signed packet.
	Packet *psbt.Packet
}

// validSigHash reports whether the sighash type is one the signer can
// produce.
func validSigHash(hashType txscript.SigHashType) bool {
	switch hashType &^ txscript.SigHashAnyOneCanPay {
	case txscript.SigHashAll, txscript.SigHashNone,
		txscript.SigHashSingle:

		return true
	}

	return hashType == txscript.SigHashDefault
}

// NewSignInputs validates caller supplied sign inputs against the packet and
// the wallet. Any spec naming another signer, an input out of range or an
// unknown sighash type fails the whole list.
func (w *Wallet) NewSignInputs(packet *psbt.Packet,
	specs []SignInputSpec) ([]SignInput, error) {

	inputs := make([]SignInput, 0, len(specs))
	for _, spec := range specs {
		idx := spec.inputIndex()
		if idx < 0 || idx >= len(packet.Inputs) {
			return nil, fmt.Errorf("%w: %d of %d",
				ErrInputIndexOutOfRange, idx, len(packet.Inputs))
		}

		if err := spec.owner(w); err != nil {
			return nil, err
		}

		hashTypes, disableTweak := spec.options()
		for _, hashType := range hashTypes {
			if !validSigHash(hashType) {
				return nil, fmt.Errorf("%w: %#x of input %d",
					ErrInvalidSigHash, uint32(hashType), idx)
			}
		}

		inputs = append(inputs, SignInput{
			Index:              idx,
			SigHashTypes:       hashTypes,
			DisableTweakSigner: disableTweak,
		})
	}

	return inputs, nil
}

// deriveSignInputs returns every input of the packet that is not finalized
// and spends an output paying to the wallet address.
func (w *Wallet) deriveSignInputs(packet *psbt.Packet) []SignInput {
	var inputs []SignInput
	for idx := range packet.Inputs {
		in := &packet.Inputs[idx]
		if isFinalized(in) {
			continue
		}

		prevOut, ok := inputPrevOut(packet, idx)
		if !ok {
			continue
		}

		_, addrs, _, err := txscript.ExtractPkScriptAddrs(
			prevOut.PkScript, w.cfg.ChainParams,
		)
		if err != nil || len(addrs) != 1 {
			continue
		}
		if addrs[0].EncodeAddress() != w.address.EncodeAddress() {
			continue
		}

		input := SignInput{Index: idx}
		if in.SighashType != txscript.SigHashDefault {
			input.SigHashTypes = []txscript.SigHashType{
				in.SighashType,
			}
		}
		inputs = append(inputs, input)
	}

	return inputs
}

// backfillTaprootInternalKeys sets the internal key of unsigned inputs that
// pay to the wallet's key path only taproot output but were handed over
// without it. Inputs whose script doesn't match are left untouched.
func (w *Wallet) backfillTaprootInternalKeys(packet *psbt.Packet) error {
	if w.cfg.AddressType != AddressP2TR {
		return nil
	}

	expected, err := txscript.PayToTaprootScript(taprootOutputKey(w.pubKey))
	if err != nil {
		return err
	}

	internalKey := schnorr.SerializePubKey(w.pubKey)
	for idx := range packet.Inputs {
		in := &packet.Inputs[idx]
		if isFinalized(in) || len(in.TaprootInternalKey) > 0 {
			continue
		}
		prevOut, ok := inputPrevOut(packet, idx)
		if !ok {
			continue
		}

		if bytes.Equal(prevOut.PkScript, expected) {
			log.Debugf("Backfilled taproot internal key of input %d",
				idx)

			in.TaprootInternalKey = internalKey
		}
	}

	return nil
}

// SignPsbt signs the inputs of the packet owned by the wallet and, unless
// told otherwise, finalizes them. The packet is only modified when every
// requested input was signed and finalized. Legacy inputs must carry their
// previous transaction.
func (w *Wallet) SignPsbt(_ context.Context, packet *psbt.Packet,
	params *SignPsbtParams) (*SignPsbtResult, error) {

	return w.signPsbt(packet, params, false)
}

// signPsbt signs the packet. With allowLegacy set, legacy inputs that only
// carry a witness utxo are signed inside the legacy guard. Only packets the
// wallet authored itself are signed that way.
func (w *Wallet) signPsbt(packet *psbt.Packet, params *SignPsbtParams,
	allowLegacy bool) (*SignPsbtResult, error) {

	if params == nil {
		params = &SignPsbtParams{}
	}

	working, err := clonePacket(packet)
	if err != nil {
		return nil, fmt.Errorf("cannot copy psbt: %w", err)
	}

	var inputs []SignInput
	if len(params.Inputs) == 0 {
		inputs = w.deriveSignInputs(working)
	} else {
		inputs, err = w.NewSignInputs(working, params.Inputs)
		if err != nil {
			return nil, err
		}
	}

	if err := w.backfillTaprootInternalKeys(working); err != nil {
		return nil, err
	}

	signed, err := w.signInputs(working, inputs, allowLegacy)
	if err != nil {
		return nil, err
	}

	if params.AutoFinalize.UnwrapOr(true) {
		for _, idx := range signed {
			if err := w.finalizeInput(working, int(idx)); err != nil {
				return nil, err
			}
		}
	}

	*packet = *working

	log.Debugf("Signed %d of %d inputs of psbt %v", len(signed),
		len(packet.Inputs), packet.UnsignedTx.TxHash())

	return &SignPsbtResult{
		SignedInputs: signed,
		Packet:       packet,
	}, nil
}

// signInputs signs the given inputs of the packet. Legacy inputs that come
// without their previous transaction are only signable when allowLegacy is
// set, in which case the legacy guard is held until every return path.
func (w *Wallet) signInputs(packet *psbt.Packet, inputs []SignInput,
	allowLegacy bool) ([]uint32, error) {

	if len(inputs) == 0 {
		return nil, nil
	}

	for idx := range packet.Inputs {
		if _, ok := inputPrevOut(packet, idx); !ok {
			return nil, fmt.Errorf("%w: input %d", ErrMissingInputUtxo,
				idx)
		}
	}

	fetcher := PsbtPrevOutputFetcher(packet)
	sigHashes := txscript.NewTxSigHashes(packet.UnsignedTx, fetcher)

	updater, err := psbt.NewUpdater(packet)
	if err != nil {
		return nil, err
	}

	if allowLegacy {
		release := w.legacy.enable()
		defer release()
	}

	signed := make([]uint32, 0, len(inputs))
	for _, input := range inputs {
		in := &packet.Inputs[input.Index]
		if isFinalized(in) {
			continue
		}

		desc := &signDescriptor{
			input:     input,
			packet:    packet,
			updater:   updater,
			fetcher:   fetcher,
			sigHashes: sigHashes,
		}
		if err := w.signInput(desc); err != nil {
			return nil, err
		}

		signed = append(signed, uint32(input.Index))
	}

	return signed, nil
}

// signDescriptor carries what is needed to sign a single input.
type signDescriptor struct {
	input     SignInput
	packet    *psbt.Packet
	updater   *psbt.Updater
	fetcher   txscript.PrevOutputFetcher
	sigHashes *txscript.TxSigHashes
}

// hashType picks the sighash type of the input: the one recorded on the
// packet, else the default of the script class. It must be one of the
// allowed types when the caller restricted them.
func (d *signDescriptor) hashType(taproot bool) (txscript.SigHashType,
	error) {

	idx := d.input.Index
	hashType := d.packet.Inputs[idx].SighashType
	if hashType == txscript.SigHashDefault && !taproot {
		hashType = txscript.SigHashAll
	}

	if !validSigHash(hashType) {
		return 0, fmt.Errorf("%w: %#x of input %d", ErrInvalidSigHash,
			uint32(hashType), idx)
	}

	if len(d.input.SigHashTypes) == 0 {
		return hashType, nil
	}
	for _, allowed := range d.input.SigHashTypes {
		if allowed == hashType {
			return hashType, nil
		}
	}

	return 0, fmt.Errorf("%w: %#x not allowed for input %d",
		ErrInvalidSigHash, uint32(hashType), idx)
}

// signInput signs one input with the wallet key according to the wallet's
// script type.
func (w *Wallet) signInput(d *signDescriptor) error {
	idx := d.input.Index
	in := &d.packet.Inputs[idx]
	prevOut := d.fetcher.FetchPrevOutput(
		d.packet.UnsignedTx.TxIn[idx].PreviousOutPoint,
	)

	ownScript := bytes.Equal(prevOut.PkScript, w.pkScript)

	switch {
	case w.cfg.AddressType == AddressP2TR &&
		txscript.IsPayToTaproot(prevOut.PkScript) &&
		(ownScript || d.input.DisableTweakSigner):

		return w.signTaproot(d, prevOut.Value, prevOut.PkScript)

	case !ownScript:
		return fmt.Errorf("%w: input %d does not pay to %v",
			ErrSigningIncomplete, idx, w.address)

	case w.cfg.AddressType == AddressP2WPKH:
		return w.signWitnessV0(d, prevOut.Value, prevOut.PkScript, nil)

	case w.cfg.AddressType == AddressP2SHP2WPKH:
		return w.signWitnessV0(
			d, prevOut.Value, w.redeemScript, w.redeemScript,
		)

	case w.cfg.AddressType == AddressP2PKH:
		return w.signLegacy(d, in, prevOut.PkScript)
	}

	return fmt.Errorf("%w: input %d has no signable descriptor",
		ErrSigningIncomplete, idx)
}

// signTaproot adds a key spend signature to a taproot input.
func (w *Wallet) signTaproot(d *signDescriptor, value int64,
	pkScript []byte) error {

	idx := d.input.Index
	in := &d.packet.Inputs[idx]

	hashType, err := d.hashType(true)
	if err != nil {
		return err
	}

	var sig []byte
	if d.input.DisableTweakSigner {
		sigHash, err := txscript.CalcTaprootSignatureHash(
			d.sigHashes, hashType, d.packet.UnsignedTx, idx,
			d.fetcher,
		)
		if err != nil {
			return err
		}

		signature, err := schnorr.Sign(w.privKey, sigHash)
		if err != nil {
			return err
		}

		sig = signature.Serialize()
		if hashType != txscript.SigHashDefault {
			sig = append(sig, byte(hashType))
		}
	} else {
		sig, err = txscript.RawTxInTaprootSignature(
			d.packet.UnsignedTx, d.sigHashes, idx, value, pkScript,
			in.TaprootMerkleRoot, hashType, w.privKey,
		)
		if err != nil {
			return err
		}
	}

	in.TaprootKeySpendSig = sig

	return nil
}

// signWitnessV0 adds a partial signature to a native or nested p2wpkh input.
func (w *Wallet) signWitnessV0(d *signDescriptor, value int64,
	subScript, redeemScript []byte) error {

	idx := d.input.Index

	hashType, err := d.hashType(false)
	if err != nil {
		return err
	}

	sig, err := txscript.RawTxInWitnessSignature(
		d.packet.UnsignedTx, d.sigHashes, idx, value, subScript,
		hashType, w.privKey,
	)
	if err != nil {
		return err
	}

	_, err = d.updater.Sign(
		idx, sig, w.pubKey.SerializeCompressed(), redeemScript, nil,
	)

	return err
}

// signLegacy adds a partial signature to a p2pkh input. Without the previous
// transaction the updater can't verify the input, so the signature is only
// attached while the legacy guard is held.
func (w *Wallet) signLegacy(d *signDescriptor, in *psbt.PInput,
	pkScript []byte) error {

	idx := d.input.Index

	hashType, err := d.hashType(false)
	if err != nil {
		return err
	}

	if in.NonWitnessUtxo == nil && !w.legacy.allowed() {
		return fmt.Errorf("%w: legacy input %d needs its previous "+
			"transaction", ErrSigningIncomplete, idx)
	}

	sig, err := txscript.RawTxInSignature(
		d.packet.UnsignedTx, idx, pkScript, hashType, w.privKey,
	)
	if err != nil {
		return err
	}

	pubKey := w.pubKey.SerializeCompressed()
	if in.NonWitnessUtxo != nil {
		// The updater treats any witness utxo as a witness spend.
		in.WitnessUtxo = nil

		_, err = d.updater.Sign(idx, sig, pubKey, nil, nil)
		return err
	}

	in.PartialSigs = append(in.PartialSigs, &psbt.PartialSig{
		PubKey:    pubKey,
		Signature: sig,
	})

	return nil
}

// finalizeInput converts the signature of an input into its final scripts.
// A legacy input that only has a witness utxo can't be finalized by the psbt
// package, so its script sig is written directly.
func (w *Wallet) finalizeInput(packet *psbt.Packet, idx int) error {
	in := &packet.Inputs[idx]
	if isFinalized(in) {
		return nil
	}

	legacyWitnessUtxo := in.NonWitnessUtxo == nil &&
		in.WitnessUtxo != nil &&
		txscript.IsPayToPubKeyHash(in.WitnessUtxo.PkScript)
	if !legacyWitnessUtxo {
		if err := psbt.Finalize(packet, idx); err != nil {
			return fmt.Errorf("cannot finalize input %d: %w", idx,
				err)
		}

		return nil
	}

	if len(in.PartialSigs) != 1 {
		return fmt.Errorf("cannot finalize input %d: %w", idx,
			psbt.ErrNotFinalizable)
	}

	sigScript, err := txscript.NewScriptBuilder().
		AddData(in.PartialSigs[0].Signature).
		AddData(in.PartialSigs[0].PubKey).
		Script()
	if err != nil {
		return err
	}

	in.FinalScriptSig = sigScript
	in.PartialSigs = nil
	in.SighashType = 0

	return nil
}

// legacyGuard scopes the signing of legacy inputs that come without their
// previous transaction to a single critical section per wallet.
type legacyGuard struct {
	mu     sync.Mutex
	active atomic.Bool
}

// enable enters the critical section. The returned function leaves it and
// must be deferred by the caller.
func (g *legacyGuard) enable() func() {
	g.mu.Lock()
	g.active.Store(true)

	return func() {
		g.active.Store(false)
		g.mu.Unlock()
	}
}

// allowed reports whether legacy signing is currently enabled.
func (g *legacyGuard) allowed() bool {
	return g.active.Load()
}
