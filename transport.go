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
	"io"

	"github.com/ZaparooProject/go-nfcbridge/protocol"
)

// Transport is the byte stream shared with the host. It is never accessed
// concurrently; implementations need no internal locking for the loop.
type Transport interface {
	// Buffered returns the number of bytes that can be read without blocking
	// and ReadByte returns them one at a time
	protocol.ByteSource

	// Write sends raw bytes to the host
	io.Writer
}

// TransportType represents the kind of link to the host
type TransportType string

const (
	// TransportSerial represents a UART or USB CDC serial link.
	TransportSerial TransportType = "serial"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)
