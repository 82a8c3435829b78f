// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config loads the asset wallet configuration from an INI file and
// command line flags, sets up logging and wires the live services.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/assetwallet/chain"
	"github.com/btcsuite/assetwallet/order"
	"github.com/btcsuite/assetwallet/pkg/btcunit"
	"github.com/btcsuite/assetwallet/wallet"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultConfigFilename = "assetwallet.conf"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "assetwallet.log"
	defaultLogLevel       = "info"
	defaultMaxLogFiles    = 3
	defaultMaxLogFileSize = 10
	defaultNetwork        = "mainnet"
	defaultIndexerURL     = "https://open-api.unisat.io"
	defaultAddressType    = "p2tr"
	defaultRequestTimeout = 30 * time.Second
)

var (
	// DefaultAppDir is the default directory holding the config file and
	// logs.
	DefaultAppDir = btcutil.AppDataDir("assetwallet", false)

	// DefaultConfigFile is the default full path of the config file.
	DefaultConfigFile = filepath.Join(DefaultAppDir, defaultConfigFilename)

	defaultLogDir = filepath.Join(DefaultAppDir, defaultLogDirname)
)

var (
	// ErrUnknownNetwork is returned for a network name that maps to no
	// chain parameters.
	ErrUnknownNetwork = errors.New("unknown network")

	// ErrMissingKey is returned when no wallet key is configured.
	ErrMissingKey = errors.New("wallet key is required")

	// ErrInvalidConfig is returned for an option outside its range.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the configuration of the asset wallet.
type Config struct {
	ConfigFile string `long:"configfile" description:"Path to configuration file"`

	Network     string `long:"network" description:"The network the wallet operates on" choice:"mainnet" choice:"testnet" choice:"signet" choice:"regtest" choice:"simnet"`
	IndexerURL  string `long:"indexerurl" description:"Base URL of the remote indexer and order service"`
	AppID       string `long:"appid" description:"Application id sent with every request"`
	AppSecret   string `long:"appsecret" description:"Shared secret used to sign requests"`
	UserAgent   string `long:"useragent" description:"User-Agent header sent with every request"`
	WIF         string `long:"wif" description:"The wallet private key in wallet import format"`
	AddressType string `long:"addresstype" description:"Script type of the wallet address" choice:"p2pkh" choice:"p2wpkh" choice:"p2tr" choice:"p2sh-p2wpkh"`

	MaxFeeRate     float64       `long:"maxfeerate" description:"Highest fee rate in sat/vB the wallet will pay"`
	ConfirmedOnly  bool          `long:"confirmedonly" description:"Only spend outputs that are confirmed"`
	RequestTimeout time.Duration `long:"requesttimeout" description:"Timeout of a single request to the remote service"`

	LogDir         string `long:"logdir" description:"Directory to log output"`
	DebugLevel     string `long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <global-level>,<subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	MaxLogFiles    int    `long:"maxlogfiles" description:"Maximum logfiles to keep (0 for no rotation)"`
	MaxLogFileSize int    `long:"maxlogfilesize" description:"Maximum logfile size in MB"`

	// The remaining fields are resolved by Validate.
	chainParams *chaincfg.Params
	privKey     *btcec.PrivateKey
	addrType    wallet.AddressType
	maxFeeRate  btcunit.SatPerVByte
}

// DefaultConfig returns all default values for the Config struct.
func DefaultConfig() Config {
	return Config{
		ConfigFile:     DefaultConfigFile,
		Network:        defaultNetwork,
		IndexerURL:     defaultIndexerURL,
		AddressType:    defaultAddressType,
		MaxFeeRate:     wallet.DefaultMaxFeeRate,
		RequestTimeout: defaultRequestTimeout,
		LogDir:         defaultLogDir,
		DebugLevel:     defaultLogLevel,
		MaxLogFiles:    defaultMaxLogFiles,
		MaxLogFileSize: defaultMaxLogFileSize,
	}
}

// Load parses the config file named by args, then args themselves, and
// validates the result. Options given as args take precedence over the
// file. A missing config file at the default path is not an error.
func Load(args []string) (*Config, error) {
	// Pre-parse the command line options to pick up an alternative config
	// file.
	preCfg := DefaultConfig()
	preParser := flags.NewParser(&preCfg, flags.Default)
	if _, err := preParser.ParseArgs(args); err != nil {
		return nil, err
	}

	// An explicit --configfile must exist.
	configFilePath := CleanAndExpandPath(preCfg.ConfigFile)
	if configFilePath != DefaultConfigFile && !fileExists(configFilePath) {
		return nil, fmt.Errorf("specified config file does not exist "+
			"in %s", configFilePath)
	}

	// Next, load any additional configuration options from the file.
	cfg := preCfg
	fileParser := flags.NewParser(&cfg, flags.Default)
	err := flags.NewIniParser(fileParser).ParseFile(configFilePath)
	if err != nil {
		// A parsing related error is returned immediately, otherwise
		// the config file may simply not exist which is OK.
		var iniErr *flags.IniError
		if errors.As(err, &iniErr) {
			return nil, err
		}
	}

	// Finally, parse the command line options again to ensure they take
	// precedence.
	flagParser := flags.NewParser(&cfg, flags.Default)
	if _, err := flagParser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the options and resolves the network, key, address type
// and fee ceiling they name.
func (c *Config) Validate() error {
	params, err := networkParams(c.Network)
	if err != nil {
		return err
	}

	u, err := url.Parse(c.IndexerURL)
	if err != nil {
		return fmt.Errorf("%w: indexer url: %w", ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: indexer url %q must be an absolute "+
			"http(s) url", ErrInvalidConfig, c.IndexerURL)
	}

	if c.WIF == "" {
		return ErrMissingKey
	}
	wif, err := btcutil.DecodeWIF(c.WIF)
	if err != nil {
		return fmt.Errorf("%w: wif: %w", ErrInvalidConfig, err)
	}
	if !wif.IsForNet(params) {
		return fmt.Errorf("%w: wif is not for network %s",
			ErrInvalidConfig, params.Name)
	}

	addrType, err := wallet.ParseAddressType(c.AddressType)
	if err != nil {
		return err
	}

	if c.MaxFeeRate <= 0 {
		return fmt.Errorf("%w: max fee rate %v must be positive",
			ErrInvalidConfig, c.MaxFeeRate)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout %v must be positive",
			ErrInvalidConfig, c.RequestTimeout)
	}

	if c.MaxLogFiles < 0 || c.MaxLogFileSize < 1 {
		return fmt.Errorf("%w: maxlogfiles %d, maxlogfilesize %d",
			ErrInvalidConfig, c.MaxLogFiles, c.MaxLogFileSize)
	}
	if _, err := parseDebugLevels(c.DebugLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.LogDir != "" {
		c.LogDir = CleanAndExpandPath(c.LogDir)
	}

	c.chainParams = params
	c.privKey = wif.PrivKey
	c.addrType = addrType
	c.maxFeeRate = btcunit.NewSatPerVByteFromFloat(c.MaxFeeRate)

	return nil
}

// Services are the live components built from a validated Config.
type Services struct {
	// Client is the remote indexer and marketplace client.
	Client *chain.Client

	// Wallet is the single key wallet.
	Wallet *wallet.Wallet

	// Orders runs the order and auction flows.
	Orders *order.Pipeline
}

// Build wires the client, wallet and order pipeline. Request metrics are
// registered with reg when it is not nil. Validate must have succeeded
// before Build is called.
func (c *Config) Build(reg prometheus.Registerer) (*Services, error) {
	params := c.ChainParams()
	if params == nil {
		return nil, fmt.Errorf("%w: config not validated",
			ErrInvalidConfig)
	}

	var metrics *chain.Metrics
	if reg != nil {
		m, err := chain.NewMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		metrics = m
	}

	client, err := chain.NewClient(&chain.ClientConfig{
		BaseURL:        c.IndexerURL,
		AppID:          c.AppID,
		AppSecret:      c.AppSecret,
		UserAgent:      c.UserAgent,
		RequestTimeout: c.RequestTimeout,
		Metrics:        metrics,
	})
	if err != nil {
		return nil, err
	}

	w, err := wallet.New(&wallet.Config{
		ChainParams:   params,
		PrivateKey:    c.privKey,
		AddressType:   c.addrType,
		Indexer:       client,
		MaxFeeRate:    c.maxFeeRate,
		ConfirmedOnly: c.ConfirmedOnly,
	})
	if err != nil {
		return nil, err
	}

	orders, err := order.New(&order.Config{Wallet: w, Market: client})
	if err != nil {
		return nil, err
	}

	return &Services{Client: client, Wallet: w, Orders: orders}, nil
}

// ChainParams returns the network resolved by Validate, or nil before the
// config is validated.
func (c *Config) ChainParams() *chaincfg.Params {
	return c.chainParams
}

// networkParams maps a network name to its chain parameters.
func networkParams(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case "mainnet", "":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "simnet":
		return &chaincfg.SimNetParams, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}
}

// CleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func CleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}
