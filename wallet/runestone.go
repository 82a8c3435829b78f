// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/txscript"
	"github.com/holiman/uint256"
)

// runestoneTagBody is the tag that ends the fields of a runestone and starts
// its edicts.
const runestoneTagBody = 0

// ErrInvalidRuneID is returned when a rune id is not of the form block:tx.
var ErrInvalidRuneID = errors.New("invalid rune id")

// RuneID identifies a rune by the block and transaction index of its etching.
type RuneID struct {
	Block uint64
	Tx    uint32
}

// ParseRuneID parses a rune id of the form block:tx.
func ParseRuneID(s string) (RuneID, error) {
	blockStr, txStr, ok := strings.Cut(s, ":")
	if !ok {
		return RuneID{}, fmt.Errorf("%w: %q", ErrInvalidRuneID, s)
	}

	block, err := strconv.ParseUint(blockStr, 10, 64)
	if err != nil {
		return RuneID{}, fmt.Errorf("%w: %q", ErrInvalidRuneID, s)
	}
	tx, err := strconv.ParseUint(txStr, 10, 32)
	if err != nil {
		return RuneID{}, fmt.Errorf("%w: %q", ErrInvalidRuneID, s)
	}

	return RuneID{Block: block, Tx: uint32(tx)}, nil
}

// String returns the rune id as block:tx.
func (r RuneID) String() string {
	return fmt.Sprintf("%d:%d", r.Block, r.Tx)
}

// Edict moves an amount of a rune to an output of the transaction.
type Edict struct {
	ID     RuneID
	Amount *uint256.Int
	Output uint32
}

// runestoneScript returns the OP_RETURN OP_13 output script carrying the
// edicts. Edicts are sorted by rune id and their ids delta encoded.
func runestoneScript(edicts []Edict) ([]byte, error) {
	sorted := make([]Edict, len(edicts))
	copy(sorted, edicts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ID.Block != sorted[j].ID.Block {
			return sorted[i].ID.Block < sorted[j].ID.Block
		}
		return sorted[i].ID.Tx < sorted[j].ID.Tx
	})

	payload := appendVarint(nil, uint256.NewInt(runestoneTagBody))

	var prev RuneID
	for _, edict := range sorted {
		if edict.Amount == nil || edict.Amount.Gt(maxRuneAmount) {
			return nil, fmt.Errorf("%w: edict of %v",
				ErrAmountOverflow, edict.ID)
		}

		blockDelta := edict.ID.Block - prev.Block
		txDelta := uint64(edict.ID.Tx)
		if blockDelta == 0 {
			txDelta = uint64(edict.ID.Tx - prev.Tx)
		}

		payload = appendVarint(payload, uint256.NewInt(blockDelta))
		payload = appendVarint(payload, uint256.NewInt(txDelta))
		payload = appendVarint(payload, edict.Amount)
		payload = appendVarint(
			payload, uint256.NewInt(uint64(edict.Output)),
		)

		prev = edict.ID
	}

	builder := txscript.NewScriptBuilder().
		AddOp(txscript.OP_RETURN).
		AddOp(txscript.OP_13)
	for len(payload) > 0 {
		n := min(len(payload), txscript.MaxScriptElementSize)
		builder.AddData(payload[:n])
		payload = payload[n:]
	}

	return builder.Script()
}

// appendVarint appends the LEB128 encoding of v to buf.
func appendVarint(buf []byte, v *uint256.Int) []byte {
	n := new(uint256.Int).Set(v)
	for n.GtUint64(0x7f) {
		buf = append(buf, byte(n.Uint64()&0x7f)|0x80)
		n.Rsh(n, 7)
	}

	return append(buf, byte(n.Uint64()))
}
