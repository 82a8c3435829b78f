// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"

	"github.com/btcsuite/assetwallet/chain"
	"github.com/stretchr/testify/mock"
)

// mockIndexer is a mock implementation of the chain.Indexer interface.
type mockIndexer struct {
	mock.Mock
}

// A compile time check to ensure that mockIndexer implements the interface.
var _ chain.Indexer = (*mockIndexer)(nil)

func (m *mockIndexer) BTCUtxos(ctx context.Context,
	address string) ([]chain.UTXO, error) {

	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]chain.UTXO), args.Error(1)
}

func (m *mockIndexer) UnavailableUtxos(ctx context.Context,
	address string) ([]chain.UTXO, error) {

	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]chain.UTXO), args.Error(1)
}

func (m *mockIndexer) AddressBalance(ctx context.Context,
	address string) (*chain.AddressBalance, error) {

	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.AddressBalance), args.Error(1)
}

func (m *mockIndexer) FeeSummary(ctx context.Context) (*chain.FeeSummary,
	error) {

	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.FeeSummary), args.Error(1)
}

func (m *mockIndexer) InscriptionUtxo(ctx context.Context,
	inscriptionID string) (*chain.UTXO, error) {

	args := m.Called(ctx, inscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.UTXO), args.Error(1)
}

func (m *mockIndexer) InscriptionUtxos(ctx context.Context,
	inscriptionIDs []string) ([]chain.UTXO, error) {

	args := m.Called(ctx, inscriptionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]chain.UTXO), args.Error(1)
}

func (m *mockIndexer) InscriptionInfo(ctx context.Context,
	inscriptionID string) (*chain.InscriptionInfo, error) {

	args := m.Called(ctx, inscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.InscriptionInfo), args.Error(1)
}

func (m *mockIndexer) AddressInscriptions(ctx context.Context,
	address string, cursor,
	size int) (*chain.Page[chain.InscriptionInfo], error) {

	args := m.Called(ctx, address, cursor, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.Page[chain.InscriptionInfo]), args.Error(1)
}

func (m *mockIndexer) AtomicalsUtxo(ctx context.Context,
	atomicalID string) (*chain.UTXO, error) {

	args := m.Called(ctx, atomicalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.UTXO), args.Error(1)
}

func (m *mockIndexer) Arc20Utxos(ctx context.Context, address,
	ticker string) ([]chain.UTXO, error) {

	args := m.Called(ctx, address, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]chain.UTXO), args.Error(1)
}

func (m *mockIndexer) Arc20BalanceList(ctx context.Context, address string,
	cursor, size int) (*chain.Page[chain.Arc20Balance], error) {

	args := m.Called(ctx, address, cursor, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.Page[chain.Arc20Balance]), args.Error(1)
}

func (m *mockIndexer) RunesUtxos(ctx context.Context, address,
	runeID string) ([]chain.UTXO, error) {

	args := m.Called(ctx, address, runeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]chain.UTXO), args.Error(1)
}

func (m *mockIndexer) RunesList(ctx context.Context, address string, cursor,
	size int) (*chain.Page[chain.RuneBalance], error) {

	args := m.Called(ctx, address, cursor, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.Page[chain.RuneBalance]), args.Error(1)
}

func (m *mockIndexer) RunesTokenSummary(ctx context.Context, address,
	runeID string) (*chain.RunesTokenSummary, error) {

	args := m.Called(ctx, address, runeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.RunesTokenSummary), args.Error(1)
}

func (m *mockIndexer) BRC20List(ctx context.Context, address string, cursor,
	size int) (*chain.Page[chain.TokenBalance], error) {

	args := m.Called(ctx, address, cursor, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.Page[chain.TokenBalance]), args.Error(1)
}

func (m *mockIndexer) BRC20TokenSummary(ctx context.Context, address,
	ticker string) (*chain.TokenSummary, error) {

	args := m.Called(ctx, address, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.TokenSummary), args.Error(1)
}

func (m *mockIndexer) BRC20TransferableList(ctx context.Context, address,
	ticker string, cursor,
	size int) (*chain.Page[chain.TokenTransfer], error) {

	args := m.Called(ctx, address, ticker, cursor, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*chain.Page[chain.TokenTransfer]), args.Error(1)
}

func (m *mockIndexer) PushTx(ctx context.Context, rawTxHex string) (string,
	error) {

	args := m.Called(ctx, rawTxHex)
	return args.String(0), args.Error(1)
}
