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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentiCelsius(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		celsius float64
		want    int16
	}{
		{name: "room temperature", celsius: 25.0, want: 2500},
		{name: "quarter degree", celsius: 21.25, want: 2125},
		{name: "truncates toward zero", celsius: 0.299, want: 29},
		{name: "negative truncates toward zero", celsius: -0.299, want: -29},
		{name: "negative", celsius: -1.5, want: -150},
		{name: "saturates high", celsius: 400, want: math.MaxInt16},
		{name: "saturates low", celsius: -400, want: math.MinInt16},
		{name: "nan", celsius: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CentiCelsius(tt.celsius))
		})
	}
}

func TestEncodeThermal_UniformGrid(t *testing.T) {
	t.Parallel()

	var pixels [ThermalPixels]float64
	for i := range pixels {
		pixels[i] = 25.00
	}

	got := EncodeThermal(pixels)
	assert.Equal(t, bytes.Repeat([]byte{0x09, 0xC4}, ThermalPixels), got)
}

func TestEncodeThermal_BigEndianSigned(t *testing.T) {
	t.Parallel()

	var pixels [ThermalPixels]float64
	pixels[0] = -1.5
	pixels[63] = 36.6

	got := EncodeThermal(pixels)
	require.Len(t, got, ThermalPayloadSize)
	assert.Equal(t, []byte{0xFF, 0x6A}, got[0:2])
	assert.Equal(t, []byte{0x0E, 0x4C}, got[126:128]) // 3660
}

func TestDecodeThermal(t *testing.T) {
	t.Parallel()

	var pixels [ThermalPixels]float64
	for i := range pixels {
		pixels[i] = float64(i) - 20.5
	}

	got, err := DecodeThermal(EncodeThermal(pixels))
	require.NoError(t, err)
	for i := range pixels {
		assert.InDelta(t, pixels[i], got[i], 0.01, "pixel %d", i)
	}
}

func TestDecodeThermal_WrongSize(t *testing.T) {
	t.Parallel()

	_, err := DecodeThermal(make([]byte, ThermalPayloadSize-1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidThermalPayload)
}
