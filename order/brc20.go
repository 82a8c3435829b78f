// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package order

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/assetwallet/chain"
)

const (
	// brc20DataURLPrefix is the data URL header of a brc-20 operation
	// file.
	brc20DataURLPrefix = "data:text/plain;charset=utf-8;base64,"

	// maxFilenameLen is the longest filename sent as is. Longer names
	// keep their head and tail around an ellipsis.
	maxFilenameLen = 48
)

// ErrInvalidMint is returned for mint parameters that can't produce an
// order.
var ErrInvalidMint = errors.New("invalid mint parameters")

// brc20Mint is the brc-20 mint operation. Field order is part of the
// inscribed content.
type brc20Mint struct {
	P    string `json:"p"`
	Op   string `json:"op"`
	Tick string `json:"tick"`
	Amt  string `json:"amt"`
}

// BuildBRC20MintFiles returns count identical inscribe files, each holding
// a brc-20 mint of amt tokens of tick.
func BuildBRC20MintFiles(tick, amt string, count int) ([]chain.InscribeFile,
	error) {

	if tick == "" || amt == "" || count < 1 {
		return nil, fmt.Errorf("%w: tick %q, amount %q, count %d",
			ErrInvalidMint, tick, amt, count)
	}

	// HTML characters in the ticker are inscribed as is.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(&brc20Mint{P: "brc-20", Op: "mint", Tick: tick,
		Amt: amt})
	if err != nil {
		return nil, err
	}
	content := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	encoded := base64.StdEncoding.EncodeToString(content)
	file := chain.InscribeFile{
		DataURL:  brc20DataURLPrefix + encoded,
		Filename: shortenFilename(string(content)),
	}

	files := make([]chain.InscribeFile, count)
	for i := range files {
		files[i] = file
	}

	return files, nil
}

// shortenFilename keeps names of up to maxFilenameLen characters and cuts
// longer ones to their first and last maxFilenameLen/2 characters.
func shortenFilename(name string) string {
	chars := []rune(name)
	if len(chars) <= maxFilenameLen {
		return name
	}

	half := maxFilenameLen / 2

	return string(chars[:half]) + "..." + string(chars[len(chars)-half:])
}
