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
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidThermalPayload is returned for thermal payloads of the wrong size
var ErrInvalidThermalPayload = errors.New("invalid thermal payload")

// CentiCelsius converts a temperature to hundredths of a degree, truncated
// toward zero and saturated to the int16 range. NaN maps to zero.
func CentiCelsius(celsius float64) int16 {
	v := math.Trunc(celsius * 100)
	switch {
	case math.IsNaN(v):
		return 0
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}

// EncodeThermal packs a thermal grid into a report payload, high byte first
func EncodeThermal(pixels [ThermalPixels]float64) []byte {
	out := make([]byte, ThermalPayloadSize)
	for i, c := range pixels {
		binary.BigEndian.PutUint16(out[i*2:], uint16(CentiCelsius(c)))
	}
	return out
}

// DecodeThermal unpacks a thermal report payload into degrees Celsius
func DecodeThermal(payload []byte) ([ThermalPixels]float64, error) {
	var pixels [ThermalPixels]float64
	if len(payload) != ThermalPayloadSize {
		return pixels, fmt.Errorf("%w: got %d bytes, want %d",
			ErrInvalidThermalPayload, len(payload), ThermalPayloadSize)
	}

	for i := range pixels {
		raw := int16(binary.BigEndian.Uint16(payload[i*2:]))
		pixels[i] = float64(raw) / 100
	}
	return pixels, nil
}
