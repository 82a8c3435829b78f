// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"encoding/json"
)

// Indexer is the read and broadcast surface of the remote indexer.
type Indexer interface {
	// BTCUtxos returns every output owned by the address.
	BTCUtxos(ctx context.Context, address string) ([]UTXO, error)

	// UnavailableUtxos returns the outputs of the address that the indexer
	// considers unsafe to spend.
	UnavailableUtxos(ctx context.Context, address string) ([]UTXO, error)

	// AddressBalance returns the balance summary of the address.
	AddressBalance(ctx context.Context, address string) (*AddressBalance,
		error)

	// FeeSummary returns the fee estimate tiers, cheapest first.
	FeeSummary(ctx context.Context) (*FeeSummary, error)

	// InscriptionUtxo returns the output holding the inscription.
	InscriptionUtxo(ctx context.Context, inscriptionID string) (*UTXO,
		error)

	// InscriptionUtxos returns the outputs holding the inscriptions.
	InscriptionUtxos(ctx context.Context, inscriptionIDs []string) ([]UTXO,
		error)

	// InscriptionInfo returns the details of an inscription.
	InscriptionInfo(ctx context.Context, inscriptionID string) (
		*InscriptionInfo, error)

	// AddressInscriptions lists the inscriptions of the address.
	AddressInscriptions(ctx context.Context, address string, cursor,
		size int) (*Page[InscriptionInfo], error)

	// AtomicalsUtxo returns the output holding the atomical.
	AtomicalsUtxo(ctx context.Context, atomicalID string) (*UTXO, error)

	// Arc20Utxos returns the outputs of the address holding the ticker.
	Arc20Utxos(ctx context.Context, address, ticker string) ([]UTXO,
		error)

	// Arc20BalanceList lists the atomicals FT balances of the address.
	Arc20BalanceList(ctx context.Context, address string, cursor,
		size int) (*Page[Arc20Balance], error)

	// RunesUtxos returns the outputs of the address holding the rune.
	RunesUtxos(ctx context.Context, address, runeID string) ([]UTXO,
		error)

	// RunesList lists the rune balances of the address.
	RunesList(ctx context.Context, address string, cursor, size int) (
		*Page[RuneBalance], error)

	// RunesTokenSummary returns the summary of a rune for the address.
	RunesTokenSummary(ctx context.Context, address, runeID string) (
		*RunesTokenSummary, error)

	// BRC20List lists the brc-20 balances of the address.
	BRC20List(ctx context.Context, address string, cursor, size int) (
		*Page[TokenBalance], error)

	// BRC20TokenSummary returns the summary of a ticker for the address.
	BRC20TokenSummary(ctx context.Context, address, ticker string) (
		*TokenSummary, error)

	// BRC20TransferableList lists the transferable inscriptions of a
	// ticker for the address.
	BRC20TransferableList(ctx context.Context, address, ticker string,
		cursor, size int) (*Page[TokenTransfer], error)

	// PushTx broadcasts a hex encoded raw transaction and returns its
	// txid.
	PushTx(ctx context.Context, rawTxHex string) (string, error)
}

// Market is the order and marketplace surface of the remote service.
type Market interface {
	// CreateRunesMintOrder creates a priced runes mint order.
	CreateRunesMintOrder(ctx context.Context, req *RunesMintRequest) (
		*Order, error)

	// CreateInscribeOrder creates a priced inscribe order.
	CreateInscribeOrder(ctx context.Context, req *InscribeRequest) (
		*Order, error)

	// AuctionList lists the open auctions of an nft type.
	AuctionList(ctx context.Context, nftType string,
		req *AuctionListRequest) (*Page[Auction], error)

	// CreateBid creates a bid on an auction.
	CreateBid(ctx context.Context, nftType string,
		req *CreateBidRequest) (*Bid, error)

	// ConfirmBid submits the signed bid PSBT.
	ConfirmBid(ctx context.Context, nftType string,
		req *ConfirmBidRequest) (json.RawMessage, error)

	// TickBalance returns the swap module balance of a ticker.
	TickBalance(ctx context.Context, address, tick string) (
		json.RawMessage, error)
}

// A compile time check to ensure that Client implements both interfaces.
var (
	_ Indexer = (*Client)(nil)
	_ Market  = (*Client)(nil)
)
