// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package order

import (
	"encoding/base64"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

// TestBuildBRC20MintFiles checks the content and names of mint files.
func TestBuildBRC20MintFiles(t *testing.T) {
	t.Parallel()

	files, err := BuildBRC20MintFiles("ordi", "1000", 2)
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, files[0], files[1])

	const content = `{"p":"brc-20","op":"mint","tick":"ordi",` +
		`"amt":"1000"}`
	require.Equal(t, content, files[0].Filename)

	encoded, ok := strings.CutPrefix(files[0].DataURL, brc20DataURLPrefix)
	require.True(t, ok)
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	require.Equal(t, content, string(decoded))
}

// TestBuildBRC20MintFilesLongName checks that long contents get an
// abbreviated name while the data URL keeps everything.
func TestBuildBRC20MintFilesLongName(t *testing.T) {
	t.Parallel()

	files, err := BuildBRC20MintFiles("<🪁>", "1000000000000000000", 1)
	require.NoError(t, err)

	const content = `{"p":"brc-20","op":"mint","tick":"<🪁>",` +
		`"amt":"1000000000000000000"}`
	name := files[0].Filename
	require.Equal(t, content[:24]+"..."+content[len(content)-24:], name)
	require.Equal(t, 2*24+3, utf8.RuneCountInString(name))

	decoded, err := base64.StdEncoding.DecodeString(
		strings.TrimPrefix(files[0].DataURL, brc20DataURLPrefix),
	)
	require.NoError(t, err)
	require.Equal(t, content, string(decoded))
}

// TestShortenFilename checks the cut at the length boundary and on
// multibyte characters.
func TestShortenFilename(t *testing.T) {
	t.Parallel()

	exact := strings.Repeat("a", maxFilenameLen)
	require.Equal(t, exact, shortenFilename(exact))

	long := strings.Repeat("é", 30) + strings.Repeat("b", 30)
	require.Equal(t,
		strings.Repeat("é", 24)+"..."+strings.Repeat("b", 24),
		shortenFilename(long))
}

// TestBuildBRC20MintFilesInvalid checks the rejected parameters.
func TestBuildBRC20MintFilesInvalid(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		tick, amt string
		count     int
	}{
		{"", "1", 1},
		{"ordi", "", 1},
		{"ordi", "1", 0},
	} {
		_, err := BuildBRC20MintFiles(tc.tick, tc.amt, tc.count)
		require.ErrorIs(t, err, ErrInvalidMint)
	}
}
