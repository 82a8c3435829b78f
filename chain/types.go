// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import "encoding/json"

// UnconfirmedHeight is the height the indexer reports for outputs that are
// still in the mempool.
const UnconfirmedHeight = 4194303

// Inscription is an ordinals inscription bound to an output.
type Inscription struct {
	InscriptionID     string `json:"inscriptionId"`
	InscriptionNumber int64  `json:"inscriptionNumber"`
	Offset            int64  `json:"offset"`
}

// Atomical is an atomicals marker bound to an output.
type Atomical struct {
	AtomicalID     string `json:"atomicalId"`
	AtomicalNumber int64  `json:"atomicalNumber"`
	Type           string `json:"type"`
	Ticker         string `json:"ticker,omitempty"`
	AtomicalValue  int64  `json:"atomicalValue,omitempty"`
}

// RuneBalance is the balance of a single rune held by an output, or by an
// address when returned from the runes list. Amount is a base-10 integer
// string that may exceed 64 bits.
type RuneBalance struct {
	RuneID       string `json:"runeid"`
	Rune         string `json:"rune"`
	SpacedRune   string `json:"spacedRune"`
	Amount       string `json:"amount"`
	Symbol       string `json:"symbol"`
	Divisibility int    `json:"divisibility"`
}

// UTXO is an unspent output as reported by the indexer.
type UTXO struct {
	TxID         string        `json:"txid"`
	Vout         uint32        `json:"vout"`
	Satoshis     int64         `json:"satoshis"`
	ScriptPk     string        `json:"scriptPk"`
	PubKey       string        `json:"pubkey,omitempty"`
	AddressType  int           `json:"addressType"`
	Inscriptions []Inscription `json:"inscriptions"`
	Atomicals    []Atomical    `json:"atomicals"`
	Runes        []RuneBalance `json:"runes,omitempty"`
	Height       int64         `json:"height"`
	Spent        bool          `json:"spent,omitempty"`
}

// AddressBalance is the balance summary of an address. Amounts are decimal
// BTC strings as returned by the service.
type AddressBalance struct {
	ConfirmAmount            string `json:"confirm_amount"`
	PendingAmount            string `json:"pending_amount"`
	Amount                   string `json:"amount"`
	ConfirmBTCAmount         string `json:"confirm_btc_amount"`
	PendingBTCAmount         string `json:"pending_btc_amount"`
	BTCAmount                string `json:"btc_amount"`
	ConfirmInscriptionAmount string `json:"confirm_inscription_amount"`
	PendingInscriptionAmount string `json:"pending_inscription_amount"`
	InscriptionAmount        string `json:"inscription_amount"`
	USDValue                 string `json:"usd_value"`
}

// FeeTier is one entry of the fee estimate list.
type FeeTier struct {
	Title   string  `json:"title"`
	Desc    string  `json:"desc"`
	FeeRate float64 `json:"feeRate"`
}

// FeeSummary is the ordered list of fee tiers, cheapest first.
type FeeSummary struct {
	List []FeeTier `json:"list"`
}

// Page is a single page of a cursor based listing.
type Page[T any] struct {
	Total int `json:"total"`
	List  []T `json:"list"`
}

// InscriptionInfo describes a single inscription.
type InscriptionInfo struct {
	InscriptionID      string `json:"inscriptionId"`
	InscriptionNumber  int64  `json:"inscriptionNumber"`
	Address            string `json:"address"`
	OutputValue        int64  `json:"outputValue"`
	ContentType        string `json:"contentType"`
	ContentLength      int64  `json:"contentLength"`
	Timestamp          int64  `json:"timestamp"`
	GenesisTransaction string `json:"genesisTransaction"`
	Location           string `json:"location"`
	Output             string `json:"output"`
	Offset             int64  `json:"offset"`
	Preview            string `json:"preview"`
	Content            string `json:"content"`
}

// TokenBalance is a brc-20 balance of an address.
type TokenBalance struct {
	Ticker              string `json:"ticker"`
	OverallBalance      string `json:"overallBalance"`
	TransferableBalance string `json:"transferableBalance"`
	AvailableBalance    string `json:"availableBalance"`
	Decimal             int    `json:"decimal"`
}

// TokenTransfer is a transferable brc-20 inscription.
type TokenTransfer struct {
	Ticker            string `json:"ticker"`
	Amount            string `json:"amount"`
	InscriptionID     string `json:"inscriptionId"`
	InscriptionNumber int64  `json:"inscriptionNumber"`
	Timestamp         int64  `json:"timestamp"`
}

// TokenSummary is the brc-20 summary of a single ticker for an address.
type TokenSummary struct {
	TokenBalance     TokenBalance    `json:"tokenBalance"`
	TokenInfo        json.RawMessage `json:"tokenInfo"`
	HistoryList      json.RawMessage `json:"historyList"`
	TransferableList []TokenTransfer `json:"transferableList"`
}

// RunesTokenSummary is the runes summary of a single rune for an address.
type RunesTokenSummary struct {
	RuneBalance RuneBalance     `json:"runeBalance"`
	RuneInfo    json.RawMessage `json:"runeInfo"`
}

// Arc20Balance is an atomicals FT balance of an address.
type Arc20Balance struct {
	Ticker             string `json:"ticker"`
	Balance            int64  `json:"balance"`
	ConfirmedBalance   int64  `json:"confirmedBalance"`
	UnconfirmedBalance int64  `json:"unconfirmedBalance"`
}

// InscribeFile is a single file of an inscribe order.
type InscribeFile struct {
	DataURL  string `json:"dataURL"`
	Filename string `json:"filename"`
}

// RunesMintRequest is the body of a runes mint order.
type RunesMintRequest struct {
	RuneID      string  `json:"runeId"`
	Count       int     `json:"count"`
	Receiver    string  `json:"receiver"`
	FeeRate     float64 `json:"feeRate"`
	OutputValue int64   `json:"outputValue"`
	ClientID    string  `json:"clientId"`
}

// InscribeRequest is the body of an inscribe order.
type InscribeRequest struct {
	Files       []InscribeFile `json:"files"`
	Receiver    string         `json:"receiver"`
	FeeRate     float64        `json:"feeRate"`
	OutputValue int64          `json:"outputValue"`
	ClientID    string         `json:"clientId"`
}

// Order is a priced remote order waiting for payment.
type Order struct {
	OrderID    string  `json:"orderId"`
	Status     string  `json:"status"`
	PayAddress string  `json:"payAddress"`
	Amount     int64   `json:"amount"`
	FeeRate    float64 `json:"feeRate"`
	ClientID   string  `json:"clientId,omitempty"`
}

// AuctionFilter restricts an auction listing.
type AuctionFilter struct {
	NftType    string `json:"nftType"`
	NftConfirm bool   `json:"nftConfirm"`
	IsEnd      bool   `json:"isEnd"`
	Tick       string `json:"tick"`
}

// AuctionSort orders an auction listing.
type AuctionSort struct {
	UnitPrice int `json:"unitPrice"`
}

// AuctionListRequest is the body of an auction listing.
type AuctionListRequest struct {
	Filter AuctionFilter `json:"filter"`
	Sort   AuctionSort   `json:"sort"`
	Start  int           `json:"start"`
	Limit  int           `json:"limit"`
	Flash  bool          `json:"flash"`
}

// Auction is a single market listing.
type Auction struct {
	AuctionID     string  `json:"auctionId"`
	InscriptionID string  `json:"inscriptionId"`
	NftType       string  `json:"nftType"`
	Tick          string  `json:"tick"`
	Amount        int64   `json:"amount"`
	Price         int64   `json:"price"`
	UnitPrice     float64 `json:"unitPrice"`
	Address       string  `json:"address"`
}

// CreateBidRequest is the body of a bid creation.
type CreateBidRequest struct {
	AuctionID string  `json:"auctionId"`
	BidPrice  int64   `json:"bidPrice"`
	Address   string  `json:"address"`
	PubKey    string  `json:"pubkey"`
	FeeRate   float64 `json:"feeRate"`
}

// Bid is a created bid whose PSBT must be signed by the buyer.
type Bid struct {
	BidID      string `json:"bidId"`
	PsbtBid    string `json:"psbtBid"`
	ServerFee  int64  `json:"serverFee"`
	NetworkFee int64  `json:"networkFee"`
}

// ConfirmBidRequest is the body of a bid confirmation.
type ConfirmBidRequest struct {
	AuctionID  string `json:"auctionId"`
	BidID      string `json:"bidId"`
	PsbtBid    string `json:"psbtBid"`
	PsbtBid2   string `json:"psbtBid2"`
	PsbtSettle string `json:"psbtSettle"`
	FromBase64 bool   `json:"fromBase64"`
	WalletType string `json:"walletType"`
}

// pushTxRequest is the body of a broadcast.
type pushTxRequest struct {
	RawTx string `json:"rawtx"`
}

// inscriptionUtxosRequest is the body of a batched inscription lookup.
type inscriptionUtxosRequest struct {
	InscriptionIDs []string `json:"inscriptionIds"`
}
