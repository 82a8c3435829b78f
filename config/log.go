// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/btcsuite/assetwallet/chain"
	"github.com/btcsuite/assetwallet/order"
	"github.com/btcsuite/assetwallet/wallet"
	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// Subsystem tags of the package loggers.
const (
	SubsystemChain  = "CHIO"
	SubsystemWallet = "AWLT"
	SubsystemOrder  = "ORDR"
)

// subsystemSetters maps each subsystem tag to the UseLogger of its package.
var subsystemSetters = map[string]func(btclog.Logger){
	SubsystemChain:  chain.UseLogger,
	SubsystemWallet: wallet.UseLogger,
	SubsystemOrder:  order.UseLogger,
}

// SupportedSubsystems returns the sorted subsystem tags.
func SupportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemSetters))
	for tag := range subsystemSetters {
		subsystems = append(subsystems, tag)
	}
	sort.Strings(subsystems)

	return subsystems
}

// LogWriter writes log lines to the console and a rotating log file.
type LogWriter struct {
	rotator *rotator.Rotator
	pipe    *io.PipeWriter
	out     io.Writer
	done    chan struct{}
}

// Write writes b to the console and, once InitLogRotator has been called,
// to the log file.
func (w *LogWriter) Write(b []byte) (int, error) {
	if w.out == nil {
		return os.Stdout.Write(b)
	}

	return w.out.Write(b)
}

// InitLogRotator opens the rotating log file under logFile. maxSize is the
// file size in MB at which the log is rolled.
func (w *LogWriter) InitLogRotator(logFile string, maxSize,
	maxFiles int) error {

	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	r, err := rotator.New(logFile, int64(maxSize*1024), false, maxFiles)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	pr, pw := io.Pipe()
	w.done = make(chan struct{})
	go func() {
		defer close(w.done)
		_ = r.Run(pr)
	}()

	w.rotator = r
	w.pipe = pw
	w.out = io.MultiWriter(os.Stdout, pw)

	return nil
}

// Close flushes the log file and closes it.
func (w *LogWriter) Close() error {
	if w.pipe == nil {
		return nil
	}

	err := w.pipe.Close()
	<-w.done
	w.pipe = nil
	w.out = nil

	if closeErr := w.rotator.Close(); err == nil {
		err = closeErr
	}

	return err
}

// Logging owns the log backend and the loggers handed to each subsystem.
type Logging struct {
	writer  *LogWriter
	loggers map[string]btclog.Logger
}

// SetupLogging creates the log backend described by cfg, hands a logger to
// every subsystem and applies cfg.DebugLevel. The caller closes the returned
// Logging on shutdown.
func SetupLogging(cfg *Config) (*Logging, error) {
	writer := &LogWriter{}
	if cfg.LogDir != "" {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		err := writer.InitLogRotator(
			logFile, cfg.MaxLogFileSize, cfg.MaxLogFiles,
		)
		if err != nil {
			return nil, err
		}
	}

	backend := btclog.NewBackend(writer)
	l := &Logging{
		writer:  writer,
		loggers: make(map[string]btclog.Logger),
	}
	for tag, use := range subsystemSetters {
		logger := backend.Logger(tag)
		l.loggers[tag] = logger
		use(logger)
	}

	if err := l.SetDebugLevels(cfg.DebugLevel); err != nil {
		_ = l.Close()
		return nil, err
	}

	return l, nil
}

// Logger returns the logger of a subsystem.
func (l *Logging) Logger(subsystem string) (btclog.Logger, bool) {
	logger, ok := l.loggers[subsystem]
	return logger, ok
}

// SetDebugLevels applies a debug level spec of the form
// "level,SUBSYS=level,...". A leading bare level applies to every
// subsystem.
func (l *Logging) SetDebugLevels(spec string) error {
	levels, err := parseDebugLevels(spec)
	if err != nil {
		return err
	}

	for tag, level := range levels {
		l.loggers[tag].SetLevel(level)
	}

	return nil
}

// Close detaches the package loggers and closes the log file.
func (l *Logging) Close() error {
	for _, use := range subsystemSetters {
		use(btclog.Disabled)
	}

	return l.writer.Close()
}

// parseDebugLevels resolves a debug level spec into the level of every
// subsystem it names.
func parseDebugLevels(spec string) (map[string]btclog.Level, error) {
	levels := strings.Split(spec, ",")
	result := make(map[string]btclog.Level)

	// If the first entry has no =, treat it as the level for all
	// subsystems.
	if global := levels[0]; !strings.Contains(global, "=") {
		level, ok := btclog.LevelFromString(global)
		if !ok {
			return nil, fmt.Errorf("the specified debug level "+
				"[%v] is invalid", global)
		}
		for tag := range subsystemSetters {
			result[tag] = level
		}
		levels = levels[1:]
	}

	for _, pair := range levels {
		fields := strings.Split(pair, "=")
		if len(fields) != 2 {
			return nil, fmt.Errorf("the specified debug level has "+
				"an invalid format [%v] -- use format "+
				"subsystem1=level1,subsystem2=level2", pair)
		}

		tag, name := fields[0], fields[1]
		if _, ok := subsystemSetters[tag]; !ok {
			return nil, fmt.Errorf("the specified subsystem [%v] "+
				"is invalid -- supported subsystems are %v",
				tag, SupportedSubsystems())
		}

		level, ok := btclog.LevelFromString(name)
		if !ok {
			return nil, fmt.Errorf("the specified debug level "+
				"[%v] is invalid", name)
		}
		result[tag] = level
	}

	return result, nil
}
