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

package nfcbridge

import (
	"context"
	"time"
)

// TagReader is the NFC collaborator polled once per loop iteration.
type TagReader interface {
	// ReadTargetID waits up to timeout for a target to enter the field.
	// ok is false when no target was found; that is not an error.
	ReadTargetID(ctx context.Context, timeout time.Duration) (uid []byte, ok bool, err error)
}

// ThermalSensor reads a 64 pixel thermal array.
type ThermalSensor interface {
	// Pixel returns the temperature of pixel i in degrees Celsius, i in [0,64)
	Pixel(i int) (float64, error)
}

// Indicator is an externally visible signal (LED, GPIO line) raised while a
// detection is being reported.
type Indicator interface {
	Set(active bool) error
}

// Initializer is implemented by collaborators that must be probed at startup.
// A failing Init is fatal for the bridge.
type Initializer interface {
	Init(ctx context.Context) error
}
