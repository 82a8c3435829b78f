// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"net/url"
	"strconv"
)

const (
	pathBTCUtxos              = "/v5/address/btc-utxo"
	pathUnavailableUtxos      = "/v5/address/unavailable-utxo"
	pathAddressBalance        = "/v5/address/balance"
	pathAddressInscriptions   = "/v5/address/inscriptions"
	pathFeeSummary            = "/v5/default/fee-summary"
	pathInscriptionUtxo       = "/v5/inscription/utxo"
	pathInscriptionUtxos      = "/v5/inscription/utxos"
	pathInscriptionInfo       = "/v5/inscription/info"
	pathAtomicalsUtxo         = "/v5/atomicals/utxo"
	pathArc20Utxos            = "/v5/arc20/utxos"
	pathArc20BalanceList      = "/v5/arc20/balance-list"
	pathRunesUtxos            = "/v5/runes/utxos"
	pathRunesList             = "/v5/runes/list"
	pathRunesTokenSummary     = "/v5/runes/token-summary"
	pathBRC20List             = "/v5/brc20/list"
	pathBRC20TokenSummary     = "/v5/brc20/token-summary"
	pathBRC20TransferableList = "/v5/brc20/transferable-list"
	pathPushTx                = "/v5/tx/broadcast"
)

// pageQuery builds the query of a cursor based listing.
func pageQuery(address string, cursor, size int) url.Values {
	return url.Values{
		"address": {address},
		"cursor":  {strconv.Itoa(cursor)},
		"size":    {strconv.Itoa(size)},
	}
}

// BTCUtxos returns every output owned by the address.
func (c *Client) BTCUtxos(ctx context.Context, address string) ([]UTXO,
	error) {

	var utxos []UTXO
	err := c.get(ctx, pathBTCUtxos, url.Values{"address": {address}},
		&utxos)
	if err != nil {
		return nil, err
	}

	return utxos, nil
}

// UnavailableUtxos returns the outputs of the address that the indexer
// considers unsafe to spend.
func (c *Client) UnavailableUtxos(ctx context.Context, address string) (
	[]UTXO, error) {

	var utxos []UTXO
	err := c.get(ctx, pathUnavailableUtxos,
		url.Values{"address": {address}}, &utxos)
	if err != nil {
		return nil, err
	}

	return utxos, nil
}

// AddressBalance returns the balance summary of the address.
func (c *Client) AddressBalance(ctx context.Context, address string) (
	*AddressBalance, error) {

	var balance AddressBalance
	err := c.get(ctx, pathAddressBalance, url.Values{"address": {address}},
		&balance)
	if err != nil {
		return nil, err
	}

	return &balance, nil
}

// FeeSummary returns the fee estimate tiers, cheapest first.
func (c *Client) FeeSummary(ctx context.Context) (*FeeSummary, error) {
	var summary FeeSummary
	if err := c.get(ctx, pathFeeSummary, nil, &summary); err != nil {
		return nil, err
	}

	return &summary, nil
}

// InscriptionUtxo returns the output holding the inscription.
func (c *Client) InscriptionUtxo(ctx context.Context, inscriptionID string) (
	*UTXO, error) {

	var utxo UTXO
	err := c.get(ctx, pathInscriptionUtxo,
		url.Values{"inscriptionId": {inscriptionID}}, &utxo)
	if err != nil {
		return nil, err
	}

	return &utxo, nil
}

// InscriptionUtxos returns the outputs holding the inscriptions.
func (c *Client) InscriptionUtxos(ctx context.Context,
	inscriptionIDs []string) ([]UTXO, error) {

	var utxos []UTXO
	err := c.post(ctx, pathInscriptionUtxos, &inscriptionUtxosRequest{
		InscriptionIDs: inscriptionIDs,
	}, &utxos)
	if err != nil {
		return nil, err
	}

	return utxos, nil
}

// InscriptionInfo returns the details of an inscription.
func (c *Client) InscriptionInfo(ctx context.Context, inscriptionID string) (
	*InscriptionInfo, error) {

	var info InscriptionInfo
	err := c.get(ctx, pathInscriptionInfo,
		url.Values{"inscriptionId": {inscriptionID}}, &info)
	if err != nil {
		return nil, err
	}

	return &info, nil
}

// AddressInscriptions lists the inscriptions of the address.
func (c *Client) AddressInscriptions(ctx context.Context, address string,
	cursor, size int) (*Page[InscriptionInfo], error) {

	var page Page[InscriptionInfo]
	err := c.get(ctx, pathAddressInscriptions,
		pageQuery(address, cursor, size), &page)
	if err != nil {
		return nil, err
	}

	return &page, nil
}

// AtomicalsUtxo returns the output holding the atomical.
func (c *Client) AtomicalsUtxo(ctx context.Context, atomicalID string) (
	*UTXO, error) {

	var utxo UTXO
	err := c.get(ctx, pathAtomicalsUtxo,
		url.Values{"atomicalId": {atomicalID}}, &utxo)
	if err != nil {
		return nil, err
	}

	return &utxo, nil
}

// Arc20Utxos returns the outputs of the address holding the ticker.
func (c *Client) Arc20Utxos(ctx context.Context, address, ticker string) (
	[]UTXO, error) {

	var utxos []UTXO
	err := c.get(ctx, pathArc20Utxos, url.Values{
		"address": {address},
		"ticker":  {ticker},
	}, &utxos)
	if err != nil {
		return nil, err
	}

	return utxos, nil
}

// Arc20BalanceList lists the atomicals FT balances of the address.
func (c *Client) Arc20BalanceList(ctx context.Context, address string,
	cursor, size int) (*Page[Arc20Balance], error) {

	var page Page[Arc20Balance]
	err := c.get(ctx, pathArc20BalanceList,
		pageQuery(address, cursor, size), &page)
	if err != nil {
		return nil, err
	}

	return &page, nil
}

// RunesUtxos returns the outputs of the address holding the rune.
func (c *Client) RunesUtxos(ctx context.Context, address, runeID string) (
	[]UTXO, error) {

	var utxos []UTXO
	err := c.get(ctx, pathRunesUtxos, url.Values{
		"address": {address},
		"runeid":  {runeID},
	}, &utxos)
	if err != nil {
		return nil, err
	}

	return utxos, nil
}

// RunesList lists the rune balances of the address.
func (c *Client) RunesList(ctx context.Context, address string, cursor,
	size int) (*Page[RuneBalance], error) {

	var page Page[RuneBalance]
	err := c.get(ctx, pathRunesList, pageQuery(address, cursor, size),
		&page)
	if err != nil {
		return nil, err
	}

	return &page, nil
}

// RunesTokenSummary returns the summary of a rune for the address.
func (c *Client) RunesTokenSummary(ctx context.Context, address,
	runeID string) (*RunesTokenSummary, error) {

	var summary RunesTokenSummary
	err := c.get(ctx, pathRunesTokenSummary, url.Values{
		"address": {address},
		"runeid":  {runeID},
	}, &summary)
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

// BRC20List lists the brc-20 balances of the address.
func (c *Client) BRC20List(ctx context.Context, address string, cursor,
	size int) (*Page[TokenBalance], error) {

	var page Page[TokenBalance]
	err := c.get(ctx, pathBRC20List, pageQuery(address, cursor, size),
		&page)
	if err != nil {
		return nil, err
	}

	return &page, nil
}

// BRC20TokenSummary returns the summary of a ticker for the address.
func (c *Client) BRC20TokenSummary(ctx context.Context, address,
	ticker string) (*TokenSummary, error) {

	var summary TokenSummary
	err := c.get(ctx, pathBRC20TokenSummary, url.Values{
		"address": {address},
		"ticker":  {ticker},
	}, &summary)
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

// BRC20TransferableList lists the transferable inscriptions of a ticker for
// the address.
func (c *Client) BRC20TransferableList(ctx context.Context, address,
	ticker string, cursor, size int) (*Page[TokenTransfer], error) {

	query := pageQuery(address, cursor, size)
	query.Set("ticker", ticker)

	var page Page[TokenTransfer]
	err := c.get(ctx, pathBRC20TransferableList, query, &page)
	if err != nil {
		return nil, err
	}

	return &page, nil
}

// PushTx broadcasts a hex encoded raw transaction and returns its txid.
func (c *Client) PushTx(ctx context.Context, rawTxHex string) (string,
	error) {

	var txid string
	err := c.post(ctx, pathPushTx, &pushTxRequest{RawTx: rawTxHex}, &txid)
	if err != nil {
		return "", err
	}

	log.Infof("Pushed tx %v", txid)

	return txid, nil
}
