// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/assetwallet/chain"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidPage is returned for a page number or size below one.
var ErrInvalidPage = errors.New("invalid page")

// PageResult is one page of a listing.
type PageResult[T any] struct {
	CurrentPage int
	PageSize    int
	Total       int
	List        []T
}

// pageCursor converts a one based page number into the cursor of the
// indexer listings.
func pageCursor(page, pageSize int) (int, error) {
	if page < 1 || pageSize < 1 {
		return 0, fmt.Errorf("%w: page %d of size %d", ErrInvalidPage,
			page, pageSize)
	}

	return (page - 1) * pageSize, nil
}

// listPage fetches one page of an indexer listing.
func listPage[T any](page, pageSize int,
	fetch func(cursor, size int) (*chain.Page[T], error)) (*PageResult[T],
	error) {

	cursor, err := pageCursor(page, pageSize)
	if err != nil {
		return nil, err
	}

	res, err := fetch(cursor, pageSize)
	if err != nil {
		return nil, err
	}

	return &PageResult[T]{
		CurrentPage: page,
		PageSize:    pageSize,
		Total:       res.Total,
		List:        res.List,
	}, nil
}

// owner returns the address to query, the wallet address when empty.
func (w *Wallet) owner(address string) string {
	if address == "" {
		return w.address.EncodeAddress()
	}

	return address
}

// AddressBalance returns the balance summary of an address.
func (w *Wallet) AddressBalance(ctx context.Context,
	address string) (*chain.AddressBalance, error) {

	return w.cfg.Indexer.AddressBalance(ctx, w.owner(address))
}

// FeeSummary returns the fee estimate tiers of the indexer.
func (w *Wallet) FeeSummary(ctx context.Context) (*chain.FeeSummary, error) {
	return w.cfg.Indexer.FeeSummary(ctx)
}

// InscriptionInfo returns the details of an inscription.
func (w *Wallet) InscriptionInfo(ctx context.Context,
	inscriptionID string) (*chain.InscriptionInfo, error) {

	info, err := w.cfg.Indexer.InscriptionInfo(ctx, inscriptionID)
	if err != nil {
		return nil, assetLookupErr(inscriptionID, err)
	}

	return info, nil
}

// Inscriptions lists the inscriptions of an address.
func (w *Wallet) Inscriptions(ctx context.Context, address string, page,
	pageSize int) (*PageResult[chain.InscriptionInfo], error) {

	return listPage(page, pageSize, func(cursor, size int) (
		*chain.Page[chain.InscriptionInfo], error) {

		return w.cfg.Indexer.AddressInscriptions(
			ctx, w.owner(address), cursor, size,
		)
	})
}

// BRC20List lists the brc-20 balances of an address.
func (w *Wallet) BRC20List(ctx context.Context, address string, page,
	pageSize int) (*PageResult[chain.TokenBalance], error) {

	return listPage(page, pageSize, func(cursor, size int) (
		*chain.Page[chain.TokenBalance], error) {

		return w.cfg.Indexer.BRC20List(
			ctx, w.owner(address), cursor, size,
		)
	})
}

// BRC20Summary returns the summary of a brc-20 ticker for an address.
func (w *Wallet) BRC20Summary(ctx context.Context, address,
	ticker string) (*chain.TokenSummary, error) {

	return w.cfg.Indexer.BRC20TokenSummary(ctx, w.owner(address), ticker)
}

// BRC20TransferableList lists the transferable inscriptions of a brc-20
// ticker for an address.
func (w *Wallet) BRC20TransferableList(ctx context.Context, address,
	ticker string, page,
	pageSize int) (*PageResult[chain.TokenTransfer], error) {

	return listPage(page, pageSize, func(cursor, size int) (
		*chain.Page[chain.TokenTransfer], error) {

		return w.cfg.Indexer.BRC20TransferableList(
			ctx, w.owner(address), ticker, cursor, size,
		)
	})
}

// RunesList lists the rune balances of an address.
func (w *Wallet) RunesList(ctx context.Context, address string, page,
	pageSize int) (*PageResult[chain.RuneBalance], error) {

	return listPage(page, pageSize, func(cursor, size int) (
		*chain.Page[chain.RuneBalance], error) {

		return w.cfg.Indexer.RunesList(
			ctx, w.owner(address), cursor, size,
		)
	})
}

// RunesSummary returns the summary of a rune for an address.
func (w *Wallet) RunesSummary(ctx context.Context, address,
	runeID string) (*chain.RunesTokenSummary, error) {

	return w.cfg.Indexer.RunesTokenSummary(ctx, w.owner(address), runeID)
}

// Arc20BalanceList lists the atomicals FT balances of an address.
func (w *Wallet) Arc20BalanceList(ctx context.Context, address string, page,
	pageSize int) (*PageResult[chain.Arc20Balance], error) {

	return listPage(page, pageSize, func(cursor, size int) (
		*chain.Page[chain.Arc20Balance], error) {

		return w.cfg.Indexer.Arc20BalanceList(
			ctx, w.owner(address), cursor, size,
		)
	})
}

// AssetSummary is an overview of the holdings of an address.
type AssetSummary struct {
	Balance      *chain.AddressBalance
	Inscriptions *PageResult[chain.InscriptionInfo]
	Runes        *PageResult[chain.RuneBalance]
	Arc20        *PageResult[chain.Arc20Balance]

	// Unavailable are the outputs the indexer holds back from spending.
	// They are only listed for the wallet address.
	Unavailable []UTXO
}

// AssetSummary fetches the balance and the first page of every asset listing
// of an address. The lookups run concurrently and the first failure cancels
// the others.
func (w *Wallet) AssetSummary(ctx context.Context, address string,
	pageSize int) (*AssetSummary, error) {

	if pageSize < 1 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidPage, pageSize)
	}

	var summary AssetSummary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		summary.Balance, err = w.AddressBalance(ctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		summary.Inscriptions, err = w.Inscriptions(
			ctx, address, 1, pageSize,
		)
		return err
	})
	g.Go(func() error {
		var err error
		summary.Runes, err = w.RunesList(ctx, address, 1, pageSize)
		return err
	})
	g.Go(func() error {
		var err error
		summary.Arc20, err = w.Arc20BalanceList(ctx, address, 1, pageSize)
		return err
	})
	if w.owner(address) == w.address.EncodeAddress() {
		g.Go(func() error {
			var err error
			summary.Unavailable, err = w.ListUnavailable(ctx)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &summary, nil
}
