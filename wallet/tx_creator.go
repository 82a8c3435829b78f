// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/assetwallet/pkg/btcunit"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
)

const (
	// txVersion is the version of every transaction the wallet builds.
	txVersion = 2

	// rbfSequence is the input sequence signalling opt-in replace by fee.
	rbfSequence = wire.MaxTxInSequenceNum - 2
)

// txIntent describes a transaction to author.
type txIntent struct {
	// outputs are the requested outputs, in order. Their positions are
	// significant for the assets they carry, so change is always added
	// after them.
	outputs []*wire.TxOut

	// pinned are asset outputs that are always spent, first and in order.
	pinned []UTXO

	// candidates are the plain funds outputs available to pay for the
	// outputs and the fee.
	candidates []UTXO

	// feeRate is the rate the transaction is priced at.
	feeRate btcunit.SatPerVByte

	// enableRBF signals replaceability on every input.
	enableRBF bool
}

// inputSequence returns the sequence of the inputs of a transaction.
func inputSequence(enableRBF bool) uint32 {
	if enableRBF {
		return rbfSequence
	}

	return wire.MaxTxInSequenceNum
}

// makeInputSource creates an InputSource that always spends the pinned
// outputs and then adds eligible outputs in order until the target is met.
func makeInputSource(pinned, eligible []UTXO,
	sequence uint32) txauthor.InputSource {

	// Current inputs and their total value. These are closed over by the
	// returned input source and reused across multiple calls.
	currentTotal := btcutil.Amount(0)
	size := len(pinned) + len(eligible)
	currentInputs := make([]*wire.TxIn, 0, size)
	currentScripts := make([][]byte, 0, size)
	currentInputValues := make([]btcutil.Amount, 0, size)

	addInput := func(utxo *UTXO) {
		nextInput := wire.NewTxIn(&utxo.OutPoint, nil, nil)
		nextInput.Sequence = sequence
		currentTotal += utxo.Value

		currentInputs = append(currentInputs, nextInput)
		currentScripts = append(currentScripts, utxo.PkScript)
		currentInputValues = append(currentInputValues, utxo.Value)
	}

	for i := range pinned {
		addInput(&pinned[i])
	}

	return func(target btcutil.Amount) (btcutil.Amount, []*wire.TxIn,
		[]btcutil.Amount, [][]byte, error) {

		for currentTotal < target && len(eligible) != 0 {
			nextCredit := eligible[0]
			eligible = eligible[1:]

			addInput(&nextCredit)
		}

		return currentTotal, currentInputs, currentInputValues,
			currentScripts, nil
	}
}

// changeSource returns a change source paying back to the wallet address.
func (w *Wallet) changeSource() *txauthor.ChangeSource {
	var scriptSize int
	switch w.cfg.AddressType {
	case AddressP2PKH:
		scriptSize = txsizes.P2PKHPkScriptSize
	case AddressP2SHP2WPKH:
		scriptSize = txsizes.NestedP2WPKHPkScriptSize
	case AddressP2WPKH:
		scriptSize = txsizes.P2WPKHPkScriptSize
	case AddressP2TR:
		scriptSize = txsizes.P2TRPkScriptSize
	}

	return &txauthor.ChangeSource{
		ScriptSize: scriptSize,
		NewScript: func() ([]byte, error) {
			return w.pkScript, nil
		},
	}
}

// checkOutput rejects outputs that would not relay. Unlike
// txrules.CheckOutput the dust limit follows the script type, so 330 sat
// taproot outputs carrying an inscription are allowed.
func checkOutput(output *wire.TxOut) error {
	switch {
	case output.Value < 0:
		return txrules.ErrAmountNegative

	case output.Value > btcutil.MaxSatoshi:
		return txrules.ErrAmountExceedsMax

	case isDataOutput(output.PkScript):
		return nil
	}

	dust := dustThreshold(output.PkScript)
	if btcutil.Amount(output.Value) < dust {
		return fmt.Errorf("%w: output value %d below dust %d",
			txrules.ErrOutputIsDust, output.Value, int64(dust))
	}

	return nil
}

// isDataOutput reports whether the script is a provably unspendable data
// carrier. Runestones and multi push memos are not standard null data, so the
// first opcode is all that is checked.
func isDataOutput(pkScript []byte) bool {
	return len(pkScript) > 0 && pkScript[0] == txscript.OP_RETURN
}

// createTransferTx authors a transaction paying the intent outputs. Pinned
// asset inputs come first, plain funds are added in order until the outputs
// and the fee are covered, and any change goes back to the wallet in the
// last position.
func (w *Wallet) createTransferTx(intent *txIntent) (*txauthor.AuthoredTx,
	error) {

	for _, output := range intent.outputs {
		if err := checkOutput(output); err != nil {
			return nil, err
		}
	}

	inputSource := makeInputSource(
		intent.pinned, intent.candidates,
		inputSequence(intent.enableRBF),
	)

	feeSatPerKb := intent.feeRate.ToSatPerKVByte().Val()

	tx, err := txauthor.NewUnsignedTransaction(
		intent.outputs, feeSatPerKb, inputSource, w.changeSource(),
	)
	if err != nil {
		var inputErr txauthor.InputSourceError
		if errors.As(err, &inputErr) {
			return nil, fmt.Errorf("%w: %v", ErrInsufficientBalance,
				err)
		}

		return nil, err
	}
	tx.Tx.Version = txVersion

	log.Debugf("Authored tx %v: %d inputs, %d outputs, change index %d "+
		"at %v", tx.Tx.TxHash(), len(tx.Tx.TxIn), len(tx.Tx.TxOut),
		tx.ChangeIndex, intent.feeRate)

	return tx, nil
}

// createDrainTx authors a transaction that spends every candidate into the
// first intent output. The value of that output is the candidate total minus
// the fee; any value it carries in the intent is ignored. Further intent
// outputs must be zero value data outputs.
func (w *Wallet) createDrainTx(intent *txIntent) (*txauthor.AuthoredTx,
	error) {

	if len(intent.outputs) == 0 {
		return nil, errors.New("drain tx needs a destination")
	}
	if len(intent.candidates) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientBalance,
			ErrNoSpendableUTXOs)
	}

	sequence := inputSequence(intent.enableRBF)

	tx := wire.NewMsgTx(txVersion)
	authored := &txauthor.AuthoredTx{
		Tx:          tx,
		ChangeIndex: -1,
	}
	for i := range intent.candidates {
		utxo := &intent.candidates[i]

		txIn := wire.NewTxIn(&utxo.OutPoint, nil, nil)
		txIn.Sequence = sequence
		tx.AddTxIn(txIn)

		authored.PrevScripts = append(authored.PrevScripts, utxo.PkScript)
		authored.PrevInputValues = append(
			authored.PrevInputValues, utxo.Value,
		)
		authored.TotalInput += utxo.Value
	}

	drain := wire.NewTxOut(0, intent.outputs[0].PkScript)
	tx.AddTxOut(drain)
	for _, output := range intent.outputs[1:] {
		if output.Value != 0 {
			return nil, errors.New("drain tx extra outputs must " +
				"carry no value")
		}
		tx.AddTxOut(output)
	}

	fee := estimateFee(authored.PrevScripts, tx.TxOut, intent.feeRate)
	drain.Value = int64(authored.TotalInput - fee)

	dust := dustThreshold(drain.PkScript)
	if btcutil.Amount(drain.Value) < dust {
		return nil, &InsufficientBalanceError{
			Available: authored.TotalInput,
			Required:  fee + dust,
		}
	}

	log.Debugf("Authored drain tx %v: %d inputs, total %v, fee %v at %v",
		tx.TxHash(), len(tx.TxIn), authored.TotalInput, fee,
		intent.feeRate)

	return authored, nil
}

// countInputTypes counts the inputs per script type the way the size
// estimator expects them. Unknown scripts are counted as p2pkh, the largest
// estimate.
func countInputTypes(prevScripts [][]byte) (p2pkh, p2tr, p2wpkh,
	nested int) {

	for _, pkScript := range prevScripts {
		switch {
		case txscript.IsPayToScriptHash(pkScript):
			nested++
		case txscript.IsPayToWitnessPubKeyHash(pkScript):
			p2wpkh++
		case txscript.IsPayToTaproot(pkScript):
			p2tr++
		default:
			p2pkh++
		}
	}

	return p2pkh, p2tr, p2wpkh, nested
}

// estimateFee returns the fee of a transaction spending the scripts into the
// outputs at the given rate, rounded up to the next whole satoshi.
func estimateFee(prevScripts [][]byte, outputs []*wire.TxOut,
	feeRate btcunit.SatPerVByte) btcutil.Amount {

	p2pkh, p2tr, p2wpkh, nested := countInputTypes(prevScripts)
	vsize := txsizes.EstimateVirtualSize(
		p2pkh, p2tr, p2wpkh, nested, outputs, 0,
	)

	return feeRate.FeeForWeightRoundUp(
		btcunit.NewVByte(uint64(vsize)).ToWU(),
	)
}

// memoOutputs returns the data outputs carrying the memos. A single memo is a
// standard null data output, several memos share one output as separate
// pushes.
func memoOutputs(memo []byte, memos [][]byte) ([]*wire.TxOut, error) {
	var outputs []*wire.TxOut

	if len(memo) > 0 {
		script, err := txscript.NullDataScript(memo)
		if err != nil {
			return nil, fmt.Errorf("invalid memo: %w", err)
		}
		outputs = append(outputs, wire.NewTxOut(0, script))
	}

	if len(memos) > 0 {
		builder := txscript.NewScriptBuilder().AddOp(txscript.OP_RETURN)
		for _, m := range memos {
			builder.AddData(m)
		}

		script, err := builder.Script()
		if err != nil {
			return nil, fmt.Errorf("invalid memos: %w", err)
		}
		outputs = append(outputs, wire.NewTxOut(0, script))
	}

	return outputs, nil
}
