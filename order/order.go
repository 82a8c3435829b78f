// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package order drives the two phase flows of the remote service: a priced
// order is created remotely, then paid on chain from the wallet. It also
// signs and confirms marketplace bids.
package order

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/assetwallet/chain"
	"github.com/btcsuite/assetwallet/pkg/btcunit"
	"github.com/btcsuite/assetwallet/wallet"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	// RunesMintOutputValue is the value of each output a runes mint order
	// delivers.
	RunesMintOutputValue = 546

	// InscribeOutputValue is the value of each inscription output an
	// inscribe order delivers.
	InscribeOutputValue = 330

	// DefaultAuctionLimit is the page size of an auction listing when
	// none is given.
	DefaultAuctionLimit = 20

	// bidWalletType is the wallet type reported when confirming a bid.
	bidWalletType = "unisat"

	// clientIDPartLen is the length of each of the two random parts of a
	// client id.
	clientIDPartLen = 8
)

var (
	// ErrMissingDependency is returned when a pipeline is created without
	// a wallet or a market.
	ErrMissingDependency = errors.New("missing pipeline dependency")

	// ErrInvalidOrder is returned when the service answers with an order
	// that can't be paid.
	ErrInvalidOrder = errors.New("invalid order")
)

// State is the progress of an order flow. Flows only move forward; there is
// no rollback.
type State uint8

const (
	// StateRequested is the state before the order is created.
	StateRequested State = iota

	// StateOrderCreated is the state once the service priced the order.
	StateOrderCreated

	// StatePaid is the state once the payment is built and signed.
	StatePaid

	// StateSubmitted is the final state, reached once the payment is
	// broadcast. Confirmation is not awaited.
	StateSubmitted
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateRequested:
		return "requested"

	case StateOrderCreated:
		return "order created"

	case StatePaid:
		return "paid"

	case StateSubmitted:
		return "submitted"

	default:
		return "unknown order state"
	}
}

// FlowError is returned when an order flow stops. It carries the state
// reached and, past StateRequested, the remote order left unpaid or
// unsubmitted.
type FlowError struct {
	// State is the last state the flow reached.
	State State

	// Order is the remote order, nil when it was never created.
	Order *chain.Order

	// Err is the failure that stopped the flow.
	Err error
}

// Error returns the failure with the order and state it happened at.
func (e *FlowError) Error() string {
	if e.Order == nil {
		return fmt.Sprintf("order not created: %v", e.Err)
	}

	return fmt.Sprintf("order %v stopped at %v: %v", e.Order.OrderID,
		e.State, e.Err)
}

// Unwrap returns the underlying failure.
func (e *FlowError) Unwrap() error {
	return e.Err
}

// Wallet is the part of the wallet driven by the pipeline.
type Wallet interface {
	// Address returns the wallet address.
	Address() btcutil.Address

	// PubKeyHex returns the compressed wallet public key in hex.
	PubKeyHex() string

	// ResolveFeeRate returns the requested rate or the default tier,
	// checked against the fee ceiling.
	ResolveFeeRate(ctx context.Context,
		requested fn.Option[btcunit.SatPerVByte]) (btcunit.SatPerVByte,
		error)

	// CheckFeeRate checks a rate against the fee ceiling.
	CheckFeeRate(rate btcunit.SatPerVByte) error

	// ListSpendable returns the spendable inventory.
	ListSpendable(ctx context.Context) ([]wallet.UTXO, error)

	// CreateSendBTC builds and signs a plain bitcoin transfer.
	CreateSendBTC(ctx context.Context,
		params *wallet.SendParams) (*wire.MsgTx, error)

	// Broadcast pushes a signed transaction.
	Broadcast(ctx context.Context, tx *wire.MsgTx) (*chainhash.Hash,
		error)

	// SignPsbt signs the wallet inputs of a packet.
	SignPsbt(ctx context.Context, packet *psbt.Packet,
		params *wallet.SignPsbtParams) (*wallet.SignPsbtResult, error)
}

// A compile time check to ensure that the wallet can drive a pipeline.
var _ Wallet = (*wallet.Wallet)(nil)

// Config holds the dependencies of a Pipeline.
type Config struct {
	// Wallet pays orders and signs bids.
	Wallet Wallet

	// Market is the remote order and marketplace service.
	Market chain.Market
}

// Result is the outcome of a paid order.
type Result struct {
	// Order is the remote order as priced by the service.
	Order *chain.Order

	// Tx is the payment transaction.
	Tx *wire.MsgTx

	// TxID is the id of the broadcast payment.
	TxID chainhash.Hash
}

// BidResult is the outcome of a confirmed bid.
type BidResult struct {
	// BidID is the id the service assigned to the bid.
	BidID string

	// SignedInputs are the bid PSBT inputs signed by the wallet.
	SignedInputs []uint32

	// Confirmation is the service answer to the confirmed bid.
	Confirmation json.RawMessage
}

// Pipeline runs order flows against the remote service. Flows are linear and
// are never retried; a flow that fails after the order is created leaves the
// remote order unpaid.
type Pipeline struct {
	cfg Config
}

// New creates a pipeline from the config.
func New(cfg *Config) (*Pipeline, error) {
	if cfg == nil || cfg.Wallet == nil || cfg.Market == nil {
		return nil, ErrMissingDependency
	}

	return &Pipeline{cfg: *cfg}, nil
}

// MintRunes orders count mints of a rune delivered to receiver, the wallet
// address when empty, and pays the order.
func (p *Pipeline) MintRunes(ctx context.Context, runeID string, count int,
	feeRate fn.Option[btcunit.SatPerVByte], receiver string) (*Result,
	error) {

	if count < 1 {
		return nil, &FlowError{
			State: StateRequested,
			Err: fmt.Errorf("%w: count %d", ErrInvalidMint,
				count),
		}
	}
	if _, err := wallet.ParseRuneID(runeID); err != nil {
		return nil, &FlowError{State: StateRequested, Err: err}
	}
	if receiver == "" {
		receiver = p.cfg.Wallet.Address().EncodeAddress()
	}

	rate, err := p.cfg.Wallet.ResolveFeeRate(ctx, feeRate)
	if err != nil {
		return nil, &FlowError{State: StateRequested, Err: err}
	}

	clientID, err := newClientID()
	if err != nil {
		return nil, &FlowError{State: StateRequested, Err: err}
	}

	log.Infof("Requesting %d mints of rune %v to %v at %v", count, runeID,
		receiver, rate)

	order, err := p.cfg.Market.CreateRunesMintOrder(
		ctx, &chain.RunesMintRequest{
			RuneID:      runeID,
			Count:       count,
			Receiver:    receiver,
			FeeRate:     rate.Float64(),
			OutputValue: RunesMintOutputValue,
			ClientID:    clientID,
		},
	)
	if err != nil {
		return nil, &FlowError{State: StateRequested, Err: err}
	}

	return p.pay(ctx, order)
}

// MintBRC20 orders count inscriptions of a brc-20 mint of amt tokens of tick
// delivered to the wallet address, and pays the order.
func (p *Pipeline) MintBRC20(ctx context.Context, tick, amt string,
	count int, feeRate fn.Option[btcunit.SatPerVByte]) (*Result, error) {

	files, err := BuildBRC20MintFiles(tick, amt, count)
	if err != nil {
		return nil, &FlowError{State: StateRequested, Err: err}
	}

	rate, err := p.cfg.Wallet.ResolveFeeRate(ctx, feeRate)
	if err != nil {
		return nil, &FlowError{State: StateRequested, Err: err}
	}

	clientID, err := newClientID()
	if err != nil {
		return nil, &FlowError{State: StateRequested, Err: err}
	}

	receiver := p.cfg.Wallet.Address().EncodeAddress()

	log.Infof("Requesting %d inscriptions of %v %v to %v at %v", count,
		amt, tick, receiver, rate)

	order, err := p.cfg.Market.CreateInscribeOrder(
		ctx, &chain.InscribeRequest{
			Files:       files,
			Receiver:    receiver,
			FeeRate:     rate.Float64(),
			OutputValue: InscribeOutputValue,
			ClientID:    clientID,
		},
	)
	if err != nil {
		return nil, &FlowError{State: StateRequested, Err: err}
	}

	return p.pay(ctx, order)
}

// pay pays an order at the rate the service priced it with and broadcasts
// the payment.
func (p *Pipeline) pay(ctx context.Context, order *chain.Order) (*Result,
	error) {

	log.Infof("Order %v created: pay %v to %v at %v sat/vb", order.OrderID,
		btcutil.Amount(order.Amount), order.PayAddress, order.FeeRate)

	fail := func(state State, err error) (*Result, error) {
		log.Errorf("Order %v stopped at %v: %v", order.OrderID, state,
			err)

		return nil, &FlowError{State: state, Order: order, Err: err}
	}

	if order.Amount <= 0 || order.PayAddress == "" {
		return fail(StateOrderCreated, fmt.Errorf("%w: pay %d to %q",
			ErrInvalidOrder, order.Amount, order.PayAddress))
	}

	// The service may reprice, and its rate is the one paid. A zero rate
	// falls back to the default tier.
	feeRate := fn.None[btcunit.SatPerVByte]()
	rate := btcunit.NewSatPerVByteFromFloat(order.FeeRate)
	if !rate.IsZero() {
		if err := p.cfg.Wallet.CheckFeeRate(rate); err != nil {
			return fail(StateOrderCreated, err)
		}
		feeRate = fn.Some(rate)
	}

	utxos, err := p.cfg.Wallet.ListSpendable(ctx)
	if err != nil {
		return fail(StateOrderCreated, err)
	}

	// The asset free outputs must cover the order amount before any fee
	// is considered.
	amount := btcutil.Amount(order.Amount)
	if _, err := wallet.SelectPlainFunds(utxos, amount); err != nil {
		return fail(StateOrderCreated, err)
	}

	tx, err := p.cfg.Wallet.CreateSendBTC(ctx, &wallet.SendParams{
		To:                order.PayAddress,
		Amount:            amount,
		FeeRate:           feeRate,
		EnableRBF:         false,
		UTXOs:             utxos,
		DisableAutoAdjust: amount != wallet.SafeBalance(utxos),
	})
	if err != nil {
		return fail(StateOrderCreated, err)
	}

	log.Infof("Order %v paid by %v", order.OrderID, tx.TxHash())

	txid, err := p.cfg.Wallet.Broadcast(ctx, tx)
	if err != nil {
		return fail(StatePaid, err)
	}

	log.Infof("Order %v submitted: %v", order.OrderID, txid)

	return &Result{Order: order, Tx: tx, TxID: *txid}, nil
}

// BuyAuction bids on an auction: the service builds the bid PSBT, the
// wallet signs and finalizes its inputs, and the signed PSBT is confirmed.
func (p *Pipeline) BuyAuction(ctx context.Context, nftType, auctionID string,
	bidPrice int64, feeRate fn.Option[btcunit.SatPerVByte]) (*BidResult,
	error) {

	rate, err := p.cfg.Wallet.ResolveFeeRate(ctx, feeRate)
	if err != nil {
		return nil, err
	}

	bid, err := p.cfg.Market.CreateBid(ctx, nftType, &chain.CreateBidRequest{
		AuctionID: auctionID,
		BidPrice:  bidPrice,
		Address:   p.cfg.Wallet.Address().EncodeAddress(),
		PubKey:    p.cfg.Wallet.PubKeyHex(),
		FeeRate:   rate.Float64(),
	})
	if err != nil {
		return nil, err
	}

	log.Infof("Created bid %v of %v on %v auction %v", bid.BidID,
		btcutil.Amount(bidPrice), nftType, auctionID)

	packet, err := wallet.DecodePsbtHex(bid.PsbtBid)
	if err != nil {
		return nil, fmt.Errorf("bid %v: %w", bid.BidID, err)
	}

	signed, err := p.cfg.Wallet.SignPsbt(ctx, packet, nil)
	if err != nil {
		return nil, fmt.Errorf("bid %v: %w", bid.BidID, err)
	}

	signedHex, err := wallet.EncodePsbtHex(signed.Packet)
	if err != nil {
		return nil, err
	}

	confirmation, err := p.cfg.Market.ConfirmBid(
		ctx, nftType, &chain.ConfirmBidRequest{
			AuctionID:  auctionID,
			BidID:      bid.BidID,
			PsbtBid:    signedHex,
			FromBase64: false,
			WalletType: bidWalletType,
		},
	)
	if err != nil {
		log.Errorf("Bid %v signed but not confirmed: %v", bid.BidID,
			err)

		return nil, err
	}

	log.Infof("Confirmed bid %v with %d signed inputs", bid.BidID,
		len(signed.SignedInputs))

	return &BidResult{
		BidID:        bid.BidID,
		SignedInputs: signed.SignedInputs,
		Confirmation: confirmation,
	}, nil
}

// ListAuctions lists the open, confirmed auctions of a ticker, cheapest unit
// price first.
func (p *Pipeline) ListAuctions(ctx context.Context, nftType, tick string,
	start, limit int) (*chain.Page[chain.Auction], error) {

	if limit == 0 {
		limit = DefaultAuctionLimit
	}

	return p.cfg.Market.AuctionList(ctx, nftType, &chain.AuctionListRequest{
		Filter: chain.AuctionFilter{
			NftType:    nftType,
			NftConfirm: true,
			IsEnd:      false,
			Tick:       tick,
		},
		Sort:  chain.AuctionSort{UnitPrice: 1},
		Start: start,
		Limit: limit,
		Flash: true,
	})
}

// TickBalance returns the swap module balance of a ticker for the wallet
// address.
func (p *Pipeline) TickBalance(ctx context.Context,
	tick string) (json.RawMessage, error) {

	return p.cfg.Market.TickBalance(
		ctx, p.cfg.Wallet.Address().EncodeAddress(), tick,
	)
}

// newClientID returns a correlation id made of two random base36 strings of
// clientIDPartLen characters.
func newClientID() (string, error) {
	// 36^8 values fit each part.
	limit := new(big.Int).Exp(big.NewInt(36), big.NewInt(clientIDPartLen),
		nil)

	var id string
	for range 2 {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}

		part := n.Text(36)
		id += strings.Repeat("0", clientIDPartLen-len(part)) + part
	}

	return id, nil
}
