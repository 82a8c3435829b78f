// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

const (
	pathRunesMintOrder = "/inscribe-v5/order/create/runes-mint"
	pathInscribeOrder  = "/inscribe-v5/order/create"
	pathSwapBalance    = "/swap-v1/balance"
)

// auctionPath returns the path of an auction endpoint for the nft type.
func auctionPath(nftType, action string) string {
	return fmt.Sprintf("/market-v4/%s/auction/%s", url.PathEscape(nftType),
		action)
}

// CreateRunesMintOrder creates a priced runes mint order.
func (c *Client) CreateRunesMintOrder(ctx context.Context,
	req *RunesMintRequest) (*Order, error) {

	var order Order
	if err := c.post(ctx, pathRunesMintOrder, req, &order); err != nil {
		return nil, err
	}

	log.Debugf("Created runes mint order %v: pay %d sats to %v",
		order.OrderID, order.Amount, order.PayAddress)

	return &order, nil
}

// CreateInscribeOrder creates a priced inscribe order.
func (c *Client) CreateInscribeOrder(ctx context.Context,
	req *InscribeRequest) (*Order, error) {

	var order Order
	if err := c.post(ctx, pathInscribeOrder, req, &order); err != nil {
		return nil, err
	}

	log.Debugf("Created inscribe order %v for %d files: pay %d sats "+
		"to %v", order.OrderID, len(req.Files), order.Amount,
		order.PayAddress)

	return &order, nil
}

// AuctionList lists the open auctions of an nft type.
func (c *Client) AuctionList(ctx context.Context, nftType string,
	req *AuctionListRequest) (*Page[Auction], error) {

	var page Page[Auction]
	err := c.post(ctx, auctionPath(nftType, "list"), req, &page)
	if err != nil {
		return nil, err
	}

	return &page, nil
}

// CreateBid creates a bid on an auction.
func (c *Client) CreateBid(ctx context.Context, nftType string,
	req *CreateBidRequest) (*Bid, error) {

	var bid Bid
	err := c.post(ctx, auctionPath(nftType, "create_bid"), req, &bid)
	if err != nil {
		return nil, err
	}

	return &bid, nil
}

// ConfirmBid submits the signed bid PSBT.
func (c *Client) ConfirmBid(ctx context.Context, nftType string,
	req *ConfirmBidRequest) (json.RawMessage, error) {

	var result json.RawMessage
	err := c.post(ctx, auctionPath(nftType, "confirm_bid"), req, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// TickBalance returns the swap module balance of a ticker.
func (c *Client) TickBalance(ctx context.Context, address, tick string) (
	json.RawMessage, error) {

	var result json.RawMessage
	err := c.get(ctx, pathSwapBalance, url.Values{
		"address": {address},
		"tick":    {tick},
	}, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}
