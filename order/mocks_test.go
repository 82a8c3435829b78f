// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package order

import (
	"context"
	"encoding/json"

	"github.com/btcsuite/assetwallet/chain"
	"github.com/btcsuite/assetwallet/pkg/btcunit"
	"github.com/btcsuite/assetwallet/wallet"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/mock"
)

// mockWallet is a mock implementation of the Wallet interface.
type mockWallet struct {
	mock.Mock
}

// A compile time check to ensure that mockWallet implements the interface.
var _ Wallet = (*mockWallet)(nil)

func (m *mockWallet) Address() btcutil.Address {
	args := m.Called()
	return args.Get(0).(btcutil.Address)
}

func (m *mockWallet) PubKeyHex() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockWallet) ResolveFeeRate(ctx context.Context,
	requested fn.Option[btcunit.SatPerVByte]) (btcunit.SatPerVByte,
	error) {

	args := m.Called(ctx, requested)
	return args.Get(0).(btcunit.SatPerVByte), args.Error(1)
}

func (m *mockWallet) CheckFeeRate(rate btcunit.SatPerVByte) error {
	args := m.Called(rate)
	return args.Error(0)
}

func (m *mockWallet) ListSpendable(ctx context.Context) ([]wallet.UTXO,
	error) {

	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]wallet.UTXO), args.Error(1)
}

func (m *mockWallet) CreateSendBTC(ctx context.Context,
	params *wallet.SendParams) (*wire.MsgTx, error) {

	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*wire.MsgTx), args.Error(1)
}

func (m *mockWallet) Broadcast(ctx context.Context,
	tx *wire.MsgTx) (*chainhash.Hash, error) {

	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chainhash.Hash), args.Error(1)
}

func (m *mockWallet) SignPsbt(ctx context.Context, packet *psbt.Packet,
	params *wallet.SignPsbtParams) (*wallet.SignPsbtResult, error) {

	args := m.Called(ctx, packet, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*wallet.SignPsbtResult), args.Error(1)
}

// mockMarket is a mock implementation of the chain.Market interface.
type mockMarket struct {
	mock.Mock
}

// A compile time check to ensure that mockMarket implements the interface.
var _ chain.Market = (*mockMarket)(nil)

func (m *mockMarket) CreateRunesMintOrder(ctx context.Context,
	req *chain.RunesMintRequest) (*chain.Order, error) {

	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.Order), args.Error(1)
}

func (m *mockMarket) CreateInscribeOrder(ctx context.Context,
	req *chain.InscribeRequest) (*chain.Order, error) {

	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.Order), args.Error(1)
}

func (m *mockMarket) AuctionList(ctx context.Context, nftType string,
	req *chain.AuctionListRequest) (*chain.Page[chain.Auction], error) {

	args := m.Called(ctx, nftType, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.Page[chain.Auction]), args.Error(1)
}

func (m *mockMarket) CreateBid(ctx context.Context, nftType string,
	req *chain.CreateBidRequest) (*chain.Bid, error) {

	args := m.Called(ctx, nftType, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.Bid), args.Error(1)
}

func (m *mockMarket) ConfirmBid(ctx context.Context, nftType string,
	req *chain.ConfirmBidRequest) (json.RawMessage, error) {

	args := m.Called(ctx, nftType, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *mockMarket) TickBalance(ctx context.Context, address,
	tick string) (json.RawMessage, error) {

	args := m.Called(ctx, address, tick)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(json.RawMessage), args.Error(1)
}
