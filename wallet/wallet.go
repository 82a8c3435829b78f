// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wallet moves bitcoin and the token overlays bound to its outputs
// (ordinals inscriptions, atomicals and runes) on behalf of a single key. All
// chain state is read live from a remote indexer: the wallet lists the outputs
// of its address, selects what to spend per asset class, builds and signs a
// PSBT and pushes the final transaction back through the indexer.
package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/assetwallet/chain"
	"github.com/btcsuite/assetwallet/pkg/btcunit"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

const (
	// DefaultMaxFeeRate is the fee ceiling in sat/vb used when none is
	// configured.
	DefaultMaxFeeRate = 50
)

var (
	// ErrMissingIndexer is returned when a wallet is created without an
	// indexer.
	ErrMissingIndexer = errors.New("missing indexer")

	// ErrMissingKey is returned when a wallet is created without a private
	// key.
	ErrMissingKey = errors.New("missing private key")
)

// AddressType is the script type of the wallet's single address. The numeric
// values match the address type tags reported by the indexer.
type AddressType uint8

const (
	// AddressP2PKH is a legacy pay-to-pubkey-hash address.
	AddressP2PKH AddressType = iota

	// AddressP2WPKH is a native segwit v0 pay-to-witness-pubkey-hash
	// address.
	AddressP2WPKH

	// AddressP2TR is a segwit v1 key path only taproot address.
	AddressP2TR

	// AddressP2SHP2WPKH is a p2wpkh program nested in a p2sh address.
	AddressP2SHP2WPKH
)

// String returns the canonical name of the address type.
func (a AddressType) String() string {
	switch a {
	case AddressP2PKH:
		return "p2pkh"
	case AddressP2WPKH:
		return "p2wpkh"
	case AddressP2TR:
		return "p2tr"
	case AddressP2SHP2WPKH:
		return "p2sh-p2wpkh"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// ParseAddressType parses the canonical name of an address type.
func ParseAddressType(s string) (AddressType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p2pkh":
		return AddressP2PKH, nil
	case "p2wpkh":
		return AddressP2WPKH, nil
	case "p2tr":
		return AddressP2TR, nil
	case "p2sh-p2wpkh", "np2wkh":
		return AddressP2SHP2WPKH, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAddressType, s)
	}
}

// Config holds the dependencies and policy of a Wallet.
type Config struct {
	// ChainParams is the network the wallet operates on.
	ChainParams *chaincfg.Params

	// PrivateKey is the single key controlling the wallet address.
	PrivateKey *btcec.PrivateKey

	// AddressType selects the script type of the wallet address.
	AddressType AddressType

	// Indexer is the remote service supplying chain data.
	Indexer chain.Indexer

	// MaxFeeRate is the fee ceiling. A zero value selects
	// DefaultMaxFeeRate.
	MaxFeeRate btcunit.SatPerVByte

	// ConfirmedOnly drops mempool outputs from the spendable inventory.
	ConfirmedOnly bool
}

// Wallet is a single key wallet. It holds no chain state of its own, so a
// Wallet is safe for concurrent use. Concurrent sends may race to spend the
// same output; the network rejects the loser at broadcast time.
type Wallet struct {
	cfg Config

	privKey  *btcec.PrivateKey
	pubKey   *btcec.PublicKey
	address  btcutil.Address
	pkScript []byte

	// redeemScript is the nested witness program of a p2sh-p2wpkh
	// wallet, nil otherwise.
	redeemScript []byte

	// legacy scopes signing of legacy inputs that carry only a witness
	// utxo.
	legacy legacyGuard
}

// New creates a wallet from the config.
func New(cfg *Config) (*Wallet, error) {
	if cfg == nil || cfg.PrivateKey == nil {
		return nil, ErrMissingKey
	}
	if cfg.Indexer == nil {
		return nil, ErrMissingIndexer
	}

	walletCfg := *cfg
	if walletCfg.ChainParams == nil {
		walletCfg.ChainParams = &chaincfg.MainNetParams
	}
	if walletCfg.MaxFeeRate.IsZero() {
		walletCfg.MaxFeeRate = btcunit.NewSatPerVByte(DefaultMaxFeeRate)
	}

	pubKey := cfg.PrivateKey.PubKey()
	addr, err := deriveAddress(
		pubKey, walletCfg.AddressType, walletCfg.ChainParams,
	)
	if err != nil {
		return nil, err
	}

	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, err
	}

	w := &Wallet{
		cfg:      walletCfg,
		privKey:  cfg.PrivateKey,
		pubKey:   pubKey,
		address:  addr,
		pkScript: pkScript,
	}

	if walletCfg.AddressType == AddressP2SHP2WPKH {
		w.redeemScript, err = witnessProgram(pubKey)
		if err != nil {
			return nil, err
		}
	}

	log.Infof("Opened %v wallet %v on %v", walletCfg.AddressType, addr,
		walletCfg.ChainParams.Name)

	return w, nil
}

// Address returns the wallet address.
func (w *Wallet) Address() btcutil.Address {
	return w.address
}

// AddressType returns the script type of the wallet address.
func (w *Wallet) AddressType() AddressType {
	return w.cfg.AddressType
}

// PubKey returns the wallet public key.
func (w *Wallet) PubKey() *btcec.PublicKey {
	return w.pubKey
}

// PubKeyHex returns the compressed wallet public key in hex.
func (w *Wallet) PubKeyHex() string {
	return hex.EncodeToString(w.pubKey.SerializeCompressed())
}

// PkScript returns the output script paying to the wallet address.
func (w *Wallet) PkScript() []byte {
	return w.pkScript
}

// ChainParams returns the network the wallet operates on.
func (w *Wallet) ChainParams() *chaincfg.Params {
	return w.cfg.ChainParams
}

// witnessProgram returns the v0 witness program of a public key, which is
// also the redeem script of its nested p2sh form.
func witnessProgram(pubKey *btcec.PublicKey) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(btcutil.Hash160(pubKey.SerializeCompressed())).
		Script()
}

// taprootOutputKey returns the BIP-0086 output key of an internal key that
// commits to no script.
func taprootOutputKey(pubKey *btcec.PublicKey) *btcec.PublicKey {
	return txscript.ComputeTaprootKeyNoScript(pubKey)
}

// deriveAddress derives the address of a public key for an address type.
func deriveAddress(pubKey *btcec.PublicKey, addrType AddressType,
	params *chaincfg.Params) (btcutil.Address, error) {

	pubKeyHash := btcutil.Hash160(pubKey.SerializeCompressed())

	switch addrType {
	case AddressP2PKH:
		return btcutil.NewAddressPubKeyHash(pubKeyHash, params)

	case AddressP2WPKH:
		return btcutil.NewAddressWitnessPubKeyHash(pubKeyHash, params)

	case AddressP2SHP2WPKH:
		program, err := witnessProgram(pubKey)
		if err != nil {
			return nil, err
		}

		return btcutil.NewAddressScriptHash(program, params)

	case AddressP2TR:
		return btcutil.NewAddressTaproot(
			schnorr.SerializePubKey(taprootOutputKey(pubKey)), params,
		)

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownAddressType, addrType)
	}
}
