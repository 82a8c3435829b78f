// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"fmt"
	"slices"

	"github.com/btcsuite/assetwallet/pkg/btcunit"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/holiman/uint256"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// DefaultRuneOutputValue is the value of the outputs receiving runes when no
// other value is requested.
const DefaultRuneOutputValue btcutil.Amount = 546

// SendParams describes a plain bitcoin transfer.
type SendParams struct {
	// To is the destination address.
	To string

	// Amount is the value to send. It is ignored when SendAll is set.
	Amount btcutil.Amount

	// SendAll spends every asset free output to the destination.
	SendAll bool

	// FeeRate is the rate to pay. The default tier of the indexer fee
	// summary is used when it is None.
	FeeRate fn.Option[btcunit.SatPerVByte]

	// EnableRBF signals opt-in replace by fee on every input.
	EnableRBF bool

	// UTXOs replaces the inventory fetch when not nil.
	UTXOs []UTXO

	// Memo is carried in a standard null data output.
	Memo []byte

	// Memos are carried as separate pushes of a single data output.
	Memos [][]byte

	// DisableAutoAdjust keeps the amount plus change strategy even when
	// Amount equals the whole safe balance.
	DisableAutoAdjust bool
}

// AssetSendParams describes a transfer of assets bound to outputs.
type AssetSendParams struct {
	// To is the destination address.
	To string

	// FeeRate is the rate to pay. The default tier of the indexer fee
	// summary is used when it is None.
	FeeRate fn.Option[btcunit.SatPerVByte]

	// EnableRBF signals opt-in replace by fee on every input.
	EnableRBF bool

	// OutputValue is the value of the output receiving the asset. Zero
	// picks the default of the operation.
	OutputValue btcutil.Amount

	// UTXOs replaces the inventory fetch of plain funds when not nil.
	UTXOs []UTXO

	// AssetUTXOs replaces the lookup of fungible asset outputs when not
	// nil.
	AssetUTXOs []UTXO
}

// SendResult is a signed and broadcast transaction.
type SendResult struct {
	Tx   *wire.MsgTx
	TxID chainhash.Hash
}

// SplitResult is the outcome of SplitInscription.
type SplitResult struct {
	SendResult

	// SplitCount is the number of outputs the inscriptions were split
	// into.
	SplitCount int
}

// SendBTC sends bitcoin from the asset free outputs of the wallet and
// broadcasts the transaction.
func (w *Wallet) SendBTC(ctx context.Context,
	params *SendParams) (*SendResult, error) {

	tx, err := w.CreateSendBTC(ctx, params)
	if err != nil {
		return nil, err
	}

	return w.publish(ctx, tx)
}

// SendAllBTC sends every asset free output of the wallet to the destination.
func (w *Wallet) SendAllBTC(ctx context.Context,
	params *SendParams) (*SendResult, error) {

	p := *params
	p.SendAll = true

	return w.SendBTC(ctx, &p)
}

// CreateSendBTC builds and signs a plain bitcoin transfer without
// broadcasting it. When the amount is the whole safe balance and auto adjust
// is on, every asset free output is drained into a single output and the fee
// is taken from it.
func (w *Wallet) CreateSendBTC(ctx context.Context,
	params *SendParams) (*wire.MsgTx, error) {

	pkScript, err := w.destination(params.To)
	if err != nil {
		return nil, err
	}

	utxos, err := w.fundingUTXOs(ctx, params.UTXOs, true)
	if err != nil {
		return nil, err
	}

	safe := SafeBalance(utxos)
	if !params.SendAll {
		if params.Amount <= 0 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAmount,
				params.Amount)
		}
		if safe < params.Amount {
			return nil, &InsufficientBalanceError{
				Available: safe,
				Required:  params.Amount,
			}
		}
	}

	feeRate, err := w.ResolveFeeRate(ctx, params.FeeRate)
	if err != nil {
		return nil, err
	}

	memos, err := memoOutputs(params.Memo, params.Memos)
	if err != nil {
		return nil, err
	}

	intent := &txIntent{
		candidates: plainFunds(utxos),
		feeRate:    feeRate,
		enableRBF:  params.EnableRBF,
	}

	drain := params.SendAll ||
		(safe == params.Amount && !params.DisableAutoAdjust)

	var authored *txauthor.AuthoredTx
	if drain {
		log.Debugf("Draining %d outputs (%v) to %v", len(intent.candidates),
			safe, params.To)

		intent.outputs = append(
			[]*wire.TxOut{wire.NewTxOut(0, pkScript)}, memos...,
		)
		authored, err = w.createDrainTx(intent)
	} else {
		intent.outputs = append(
			[]*wire.TxOut{
				wire.NewTxOut(int64(params.Amount), pkScript),
			}, memos...,
		)
		authored, err = w.createTransferTx(intent)
	}
	if err != nil {
		return nil, err
	}

	return w.signAuthored(ctx, authored)
}

// SendInscription sends the output holding an inscription. Other assets on
// the same output travel with it.
func (w *Wallet) SendInscription(ctx context.Context, inscriptionID string,
	params *AssetSendParams) (*SendResult, error) {

	asset, err := w.InscriptionUTXO(ctx, inscriptionID)
	if err != nil {
		return nil, err
	}

	pkScript, err := w.destination(params.To)
	if err != nil {
		return nil, err
	}

	outputValue := params.OutputValue
	if outputValue == 0 {
		outputValue = asset.Value
	}
	if dust := dustThreshold(pkScript); outputValue < dust {
		return nil, fmt.Errorf("%w: output value %v below dust %v",
			ErrInvalidAmount, outputValue, dust)
	}
	for _, ins := range asset.Inscriptions {
		if ins.Offset >= int64(outputValue) {
			return nil, fmt.Errorf("%w: inscription %v at offset %d "+
				"doesn't fit an output of %d", ErrInvalidAmount,
				ins.ID, ins.Offset, int64(outputValue))
		}
	}

	return w.sendAssets(ctx, params, []UTXO{*asset}, []*wire.TxOut{
		wire.NewTxOut(int64(outputValue), pkScript),
	}, true)
}

// SendInscriptions sends several inscriptions in one transaction, one output
// each. Every inscription must sit alone on its output and carry at least the
// dust value of the destination.
func (w *Wallet) SendInscriptions(ctx context.Context,
	inscriptionIDs []string, params *AssetSendParams) (*SendResult, error) {

	assets, err := w.InscriptionUTXOs(ctx, inscriptionIDs)
	if err != nil {
		return nil, err
	}

	pkScript, err := w.destination(params.To)
	if err != nil {
		return nil, err
	}

	dust := dustThreshold(pkScript)
	outputs := make([]*wire.TxOut, 0, len(assets))
	for i := range assets {
		asset := &assets[i]
		if len(asset.Inscriptions) > 1 {
			return nil, fmt.Errorf("%w: %v", ErrMixedAssetConflict,
				asset)
		}
		if asset.Value < dust {
			return nil, fmt.Errorf("%w: %v holds %v", ErrAssetBelowDust,
				asset, asset.Value)
		}

		outputs = append(outputs, wire.NewTxOut(
			int64(asset.Value), pkScript,
		))
	}

	return w.sendAssets(ctx, params, assets, outputs, true)
}

// SplitParams describes how to split an output carrying several
// inscriptions.
type SplitParams struct {
	// FeeRate is the rate to pay. The default tier of the indexer fee
	// summary is used when it is None.
	FeeRate fn.Option[btcunit.SatPerVByte]

	// EnableRBF signals opt-in replace by fee on every input.
	EnableRBF bool

	// OutputValue is the minimum value of each split output.
	OutputValue btcutil.Amount

	// UTXOs replaces the inventory fetch of plain funds when not nil.
	UTXOs []UTXO
}

// SplitInscription splits the output holding an inscription into outputs
// back to the wallet, separating the inscriptions on it where their offsets
// allow.
func (w *Wallet) SplitInscription(ctx context.Context, inscriptionID string,
	params *SplitParams) (*SplitResult, error) {

	asset, err := w.InscriptionUTXO(ctx, inscriptionID)
	if err != nil {
		return nil, err
	}

	dust := dustThreshold(w.pkScript)
	if params.OutputValue < dust {
		return nil, fmt.Errorf("%w: output value %v below dust %v",
			ErrInvalidAmount, params.OutputValue, dust)
	}

	values := splitOutputValues(asset, params.OutputValue, dust)
	outputs := make([]*wire.TxOut, 0, len(values))
	for _, value := range values {
		outputs = append(outputs, wire.NewTxOut(int64(value), w.pkScript))
	}

	assetParams := &AssetSendParams{
		FeeRate:   params.FeeRate,
		EnableRBF: params.EnableRBF,
		UTXOs:     params.UTXOs,
	}
	res, err := w.sendAssets(
		ctx, assetParams, []UTXO{*asset}, outputs, false,
	)
	if err != nil {
		return nil, err
	}

	log.Infof("Split %v into %d outputs", asset, len(values))

	return &SplitResult{SendResult: *res, SplitCount: len(values)}, nil
}

// splitOutputValues cuts the value of an output into consecutive ranges so
// that inscriptions far enough apart land in different outputs. Every range
// holds at least outputValue, inscriptions too close to their successor are
// grouped with it, and a tail below dust is merged into the last range.
func splitOutputValues(asset *UTXO, outputValue,
	dust btcutil.Amount) []btcutil.Amount {

	offsets := make([]int64, 0, len(asset.Inscriptions))
	for _, ins := range asset.Inscriptions {
		offsets = append(offsets, ins.Offset)
	}
	slices.Sort(offsets)

	var (
		values []btcutil.Amount
		cursor int64
	)
	for i := 0; i < len(offsets)-1; i++ {
		end := max(cursor+int64(outputValue), offsets[i]+1)
		if end > offsets[i+1] {
			continue
		}

		values = append(values, btcutil.Amount(end-cursor))
		cursor = end
	}

	remainder := asset.Value - btcutil.Amount(cursor)
	if remainder < dust && len(values) > 0 {
		values[len(values)-1] += remainder
	} else {
		values = append(values, remainder)
	}

	return values
}

// SendAtomicalsNFT sends the output holding an atomicals NFT.
func (w *Wallet) SendAtomicalsNFT(ctx context.Context, atomicalID string,
	params *AssetSendParams) (*SendResult, error) {

	asset, err := w.AtomicalUTXO(ctx, atomicalID)
	if err != nil {
		return nil, err
	}
	if len(asset.Inscriptions) > 1 || len(asset.Atomicals) > 1 {
		return nil, fmt.Errorf("%w: %v", ErrMixedAssetConflict, asset)
	}

	pkScript, err := w.destination(params.To)
	if err != nil {
		return nil, err
	}

	return w.sendAssets(ctx, params, []UTXO{*asset}, []*wire.TxOut{
		wire.NewTxOut(int64(asset.Value), pkScript),
	}, true)
}

// SendAtomicalsFT sends an amount of an atomicals FT ticker. Token units are
// satoshis, so the selected outputs are split into the amount to the
// destination and the token change back to the wallet.
func (w *Wallet) SendAtomicalsFT(ctx context.Context, ticker string,
	amount btcutil.Amount, params *AssetSendParams) (*SendResult, error) {

	if amount <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	pkScript, err := w.destination(params.To)
	if err != nil {
		return nil, err
	}

	assets := params.AssetUTXOs
	if assets == nil {
		assets, err = w.ListAtomicalsFTUTXOs(ctx, ticker)
		if err != nil {
			return nil, err
		}
	}

	sel, err := SelectFungible(assets, amount, dustThreshold(w.pkScript))
	if err != nil {
		return nil, err
	}

	outputs := []*wire.TxOut{wire.NewTxOut(int64(amount), pkScript)}
	if sel.Change > 0 {
		outputs = append(outputs, wire.NewTxOut(
			int64(sel.Change), w.pkScript,
		))
	}

	return w.sendAssets(ctx, params, sel.UTXOs, outputs, false)
}

// SendRunes sends an amount of a rune. The runestone moves the amount to the
// destination output; whatever else the inputs hold goes to the first output,
// which is a change output back to the wallet whenever there is anything
// left.
func (w *Wallet) SendRunes(ctx context.Context, runeID string,
	amount *uint256.Int, params *AssetSendParams) (*SendResult, error) {

	id, err := ParseRuneID(runeID)
	if err != nil {
		return nil, err
	}

	pkScript, err := w.destination(params.To)
	if err != nil {
		return nil, err
	}

	assets := params.AssetUTXOs
	if assets == nil {
		assets, err = w.ListRuneUTXOs(ctx, runeID)
		if err != nil {
			return nil, err
		}
	}

	sel, err := SelectRunes(assets, runeID, amount)
	if err != nil {
		return nil, err
	}

	outputValue := params.OutputValue
	if outputValue == 0 {
		outputValue = DefaultRuneOutputValue
	}

	keepChange := !sel.ChangeAmount.IsZero() || holdsOtherRunes(sel, runeID)

	var (
		outputs []*wire.TxOut
		target  uint32
	)
	if keepChange {
		outputs = append(outputs, wire.NewTxOut(
			int64(outputValue), w.pkScript,
		))
		target = 1
	}
	outputs = append(outputs, wire.NewTxOut(int64(outputValue), pkScript))

	script, err := runestoneScript([]Edict{{
		ID:     id,
		Amount: amount,
		Output: target,
	}})
	if err != nil {
		return nil, err
	}
	outputs = append(outputs, wire.NewTxOut(0, script))

	log.Debugf("Sending %v of rune %v from %d outputs, rune change %v",
		amount.Dec(), runeID, len(sel.UTXOs), sel.ChangeAmount.Dec())

	return w.sendAssets(ctx, params, sel.UTXOs, outputs, false)
}

// holdsOtherRunes reports whether the selection carries runes besides the
// one being sent.
func holdsOtherRunes(sel *Selection, runeID string) bool {
	for _, utxo := range sel.UTXOs {
		for _, r := range utxo.Runes {
			if r.RuneID != runeID {
				return true
			}
		}
	}

	return false
}

// sendAssets spends the asset outputs first and in order into the given
// outputs, pays the fee from plain funds, signs and broadcasts.
func (w *Wallet) sendAssets(ctx context.Context, params *AssetSendParams,
	assets []UTXO, outputs []*wire.TxOut,
	requireFunds bool) (*SendResult, error) {

	utxos, err := w.fundingUTXOs(ctx, params.UTXOs, requireFunds)
	if err != nil {
		return nil, err
	}

	feeRate, err := w.ResolveFeeRate(ctx, params.FeeRate)
	if err != nil {
		return nil, err
	}

	authored, err := w.createTransferTx(&txIntent{
		outputs:    outputs,
		pinned:     assets,
		candidates: excludeOutPoints(plainFunds(utxos), assets),
		feeRate:    feeRate,
		enableRBF:  params.EnableRBF,
	})
	if err != nil {
		return nil, err
	}

	tx, err := w.signAuthored(ctx, authored)
	if err != nil {
		return nil, err
	}

	return w.publish(ctx, tx)
}

// fundingUTXOs returns the given outputs or, when nil, the spendable
// inventory. An empty result is an error when funds are required.
func (w *Wallet) fundingUTXOs(ctx context.Context, given []UTXO,
	requireFunds bool) ([]UTXO, error) {

	utxos := given
	if utxos == nil {
		var err error
		utxos, err = w.ListSpendable(ctx)
		if err != nil {
			return nil, err
		}
	}

	if requireFunds && len(utxos) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientBalance,
			ErrNoSpendableUTXOs)
	}

	return utxos, nil
}

// excludeOutPoints drops the candidates that are already spent as assets.
func excludeOutPoints(candidates, spent []UTXO) []UTXO {
	if len(spent) == 0 {
		return candidates
	}

	skip := make(map[wire.OutPoint]struct{}, len(spent))
	for _, utxo := range spent {
		skip[utxo.OutPoint] = struct{}{}
	}

	kept := make([]UTXO, 0, len(candidates))
	for _, utxo := range candidates {
		if _, ok := skip[utxo.OutPoint]; !ok {
			kept = append(kept, utxo)
		}
	}

	return kept
}

// destination decodes an address of the wallet network and returns the
// script paying to it.
func (w *Wallet) destination(to string) ([]byte, error) {
	addr, err := btcutil.DecodeAddress(to, w.cfg.ChainParams)
	if err != nil {
		return nil, fmt.Errorf("invalid destination %q: %w", to, err)
	}
	if !addr.IsForNet(w.cfg.ChainParams) {
		return nil, fmt.Errorf("destination %q is not a %v address", to,
			w.cfg.ChainParams.Name)
	}

	return txscript.PayToAddrScript(addr)
}

// signAuthored signs every wallet input of an authored transaction and
// returns the final transaction.
func (w *Wallet) signAuthored(_ context.Context,
	authored *txauthor.AuthoredTx) (*wire.MsgTx, error) {

	packet, err := w.packetFromAuthored(authored)
	if err != nil {
		return nil, err
	}

	if _, err := w.signPsbt(packet, nil, true); err != nil {
		return nil, err
	}

	for idx := range packet.Inputs {
		if !isFinalized(&packet.Inputs[idx]) {
			return nil, fmt.Errorf("%w: input %d spends %v",
				ErrSigningIncomplete, idx,
				packet.UnsignedTx.TxIn[idx].PreviousOutPoint)
		}
	}

	return extractTx(packet)
}

// publish broadcasts a signed transaction.
func (w *Wallet) publish(ctx context.Context,
	tx *wire.MsgTx) (*SendResult, error) {

	txid, err := w.Broadcast(ctx, tx)
	if err != nil {
		return nil, err
	}

	return &SendResult{Tx: tx, TxID: *txid}, nil
}
