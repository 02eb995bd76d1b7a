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

// Package frame builds and parses PN532 normal information frames
package frame

// TFI values
const (
	HostToPn532 byte = 0xD4
	Pn532ToHost byte = 0xD5
)

// Every frame is wrapped as 00 | 00 FF | LEN LCS | TFI data... DCS | 00
const (
	Preamble   byte = 0x00
	StartCode1 byte = 0x00
	StartCode2 byte = 0xFF
	Postamble  byte = 0x00
)

const (
	// MaxFrameDataLength bounds LEN; extended frames are never sent
	MaxFrameDataLength = 0xFF
	// MinFrameLength is start code, LEN, LCS and the ACK/NACK tail
	MinFrameLength = 6
	// Overhead is everything around TFI+data in a built frame
	Overhead = 7
)

// AckFrame and NackFrame are fixed six byte frames. The host sends an ACK to
// abort a command and a NACK to ask for the last response again.
var (
	AckFrame  = []byte{Preamble, StartCode1, StartCode2, 0x00, 0xFF, Postamble}
	NackFrame = []byte{Preamble, StartCode1, StartCode2, 0xFF, 0x00, Postamble}
)
