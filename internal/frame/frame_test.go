// go-nfcbridge
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-nfcbridge.
//
// go-nfcbridge is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-nfcbridge is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-nfcbridge; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package frame

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firmwareResponse is a GetFirmwareVersion reply from a PN532 v1.6
var firmwareResponse = []byte{0x00, 0x00, 0xFF, 0x06, 0xFA, 0xD5, 0x03, 0x32, 0x01, 0x06, 0x07, 0xE8, 0x00}

func TestBuild(t *testing.T) {
	t.Parallel()

	got, err := Build(0x02, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0xFF, 0x02, 0xFE, 0xD4, 0x02, 0x2A, 0x00}, got)

	got, err = Build(0x14, []byte{0x01, 0x14, 0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0xFF, 0x05, 0xFB, 0xD4, 0x14, 0x01, 0x14, 0x01, 0x02, 0x00}, got)
}

func TestBuild_TooLarge(t *testing.T) {
	t.Parallel()

	_, err := Build(0x40, make([]byte, MaxFrameDataLength-1))
	require.ErrorIs(t, err, ErrDataTooLarge)

	_, err = Build(0x40, make([]byte, MaxFrameDataLength-2))
	require.NoError(t, err)
}

func TestParse_Data(t *testing.T) {
	t.Parallel()

	kind, data, n, err := Parse(firmwareResponse)
	require.NoError(t, err)
	assert.Equal(t, KindData, kind)
	assert.Equal(t, []byte{0x03, 0x32, 0x01, 0x06, 0x07}, data)
	assert.Equal(t, len(firmwareResponse), n)
}

func TestParse_SkipsLeadingNoise(t *testing.T) {
	t.Parallel()

	buf := append([]byte{0xAA, 0x12}, firmwareResponse...)
	kind, data, n, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, KindData, kind)
	assert.Equal(t, byte(0x03), data[0])
	assert.Equal(t, len(buf), n)
}

func TestParse_AckNack(t *testing.T) {
	t.Parallel()

	kind, _, n, err := Parse(AckFrame)
	require.NoError(t, err)
	assert.Equal(t, KindAck, kind)
	assert.Equal(t, len(AckFrame), n)

	kind, _, n, err = Parse(NackFrame)
	require.NoError(t, err)
	assert.Equal(t, KindNack, kind)
	assert.Equal(t, len(NackFrame), n)
}

func TestParse_AckFollowedByResponse(t *testing.T) {
	t.Parallel()

	buf := append(bytes.Clone(AckFrame), firmwareResponse...)
	kind, _, n, err := Parse(buf)
	require.NoError(t, err)
	require.Equal(t, KindAck, kind)

	kind, data, _, err := Parse(buf[n:])
	require.NoError(t, err)
	assert.Equal(t, KindData, kind)
	assert.Len(t, data, 5)
}

func TestParse_Incomplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		buf   []byte
		wantN int
	}{
		{name: "empty", buf: nil, wantN: 0},
		{name: "noise only", buf: []byte{0x11, 0x22}, wantN: 2},
		{name: "noise then zero", buf: []byte{0x11, 0x00}, wantN: 1},
		{name: "start code only", buf: []byte{0x00, 0x00, 0xFF}, wantN: 1},
		{name: "truncated body", buf: firmwareResponse[:8], wantN: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, n, err := Parse(tt.buf)
			require.ErrorIs(t, err, ErrIncomplete)
			assert.Equal(t, tt.wantN, n)
		})
	}
}

func TestParse_Corrupted(t *testing.T) {
	t.Parallel()

	badDCS := bytes.Clone(firmwareResponse)
	badDCS[11] ^= 0xFF
	_, _, n, err := Parse(badDCS)
	require.ErrorIs(t, err, ErrChecksumMismatch)
	assert.Equal(t, 12, n)

	badLCS := bytes.Clone(firmwareResponse)
	badLCS[4] = 0x00
	_, _, _, err = Parse(badLCS)
	require.ErrorIs(t, err, ErrFrameCorrupted)

	// A host frame echoed back has the wrong direction byte
	echo, err := Build(0x02, nil)
	require.NoError(t, err)
	_, _, _, err = Parse(echo)
	require.ErrorIs(t, err, ErrFrameCorrupted)
}
