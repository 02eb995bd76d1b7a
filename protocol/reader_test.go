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

package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_SkipsTextAndInvalidFrames(t *testing.T) {
	t.Parallel()

	uid, err := Encode(CmdIdentifier, []byte{0x04, 0xA3, 0x2B, 0x9C})
	require.NoError(t, err)
	thermal, err := Encode(CmdThermalReport, EncodeThermal([ThermalPixels]float64{}))
	require.NoError(t, err)

	var stream bytes.Buffer
	stream.WriteString("NFC reader is ready.\r\n")
	stream.Write(uid)
	stream.Write([]byte{0xA5, 0x01, 0x01, 0xFF, 0x00, 0x5A}) // checksum should be 0x5A
	stream.Write(thermal)

	r := NewReader(&stream)

	f, err := r.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, CmdIdentifier, f.Command)
	assert.Equal(t, []byte{0x04, 0xA3, 0x2B, 0x9C}, f.Payload)

	f, err = r.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, CmdThermalReport, f.Command)
	assert.Len(t, f.Payload, ThermalPayloadSize)

	_, err = r.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 1, r.Discarded())
}

func TestReader_TruncatedFrame(t *testing.T) {
	t.Parallel()

	r := NewReader(bytes.NewReader([]byte{0xA5, 0x01, 0x04, 0x04, 0xA3}))
	_, err := r.ReadFrame()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReader_OversizeLengthIsDiscarded(t *testing.T) {
	t.Parallel()

	good, err := Encode(CmdThermalRequest, nil)
	require.NoError(t, err)

	data := append([]byte{0xA5, 0x01, 0xFF}, good...)
	r := NewReader(bytes.NewReader(data))

	f, err := r.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, CmdThermalRequest, f.Command)
	assert.Equal(t, 1, r.Discarded())
}
