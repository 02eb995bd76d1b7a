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

package pn532

import (
	"errors"

	nfcbridge "github.com/ZaparooProject/go-nfcbridge"
	"github.com/ZaparooProject/go-nfcbridge/internal/frame"
)

// Protocol errors
var (
	ErrNoACK              = errors.New("no ACK received")
	ErrFrameCorrupted     = frame.ErrFrameCorrupted
	ErrChecksumMismatch   = frame.ErrChecksumMismatch
	ErrDataTooLarge       = frame.ErrDataTooLarge
	ErrUnexpectedResponse = errors.New("unexpected response")
	ErrInvalidFirmware    = errors.New("unexpected firmware")
)

// NewNoACKError creates a retryable error for a command the PN532 did not
// acknowledge
func NewNoACKError(op, port string) *nfcbridge.TransportError {
	return nfcbridge.NewTransportError(op, port, ErrNoACK, nfcbridge.ErrorTypeTimeout)
}

// NewFrameCorruptedError creates a retryable corrupted-frame error
func NewFrameCorruptedError(op, port string) *nfcbridge.TransportError {
	return nfcbridge.NewTransportError(op, port, ErrFrameCorrupted, nfcbridge.ErrorTypeTransient)
}

// NewDataTooLargeError creates a permanent error for an oversized command
func NewDataTooLargeError(op, port string) *nfcbridge.TransportError {
	return nfcbridge.NewTransportError(op, port, ErrDataTooLarge, nfcbridge.ErrorTypePermanent)
}
