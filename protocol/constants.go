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

// Package protocol implements the framed serial protocol spoken between the
// bridge and the host.
//
// Layout: Header(1) | Command(1) | Length(1) | Payload(Length) | Checksum(1) | Footer(1)
package protocol

// Frame markers
const (
	Header byte = 0xA5
	Footer byte = 0x5A
)

// Frame sizing
const (
	Overhead       = 5 // header + command + length + checksum + footer
	MinFrameSize   = Overhead
	MaxPayloadSize = 253
	MaxFrameSize   = Overhead + MaxPayloadSize
)

// Command codes
const (
	CmdIdentifier     byte = 0x01 // device to host, payload is the tag UID
	CmdThermalRequest byte = 0x10 // host to device, empty payload
	CmdThermalReport  byte = 0x11 // device to host, thermal grid
)

// Thermal report sizing
const (
	ThermalPixels      = 64
	ThermalPayloadSize = ThermalPixels * 2
)

// CommandName returns a human readable name for a command code
func CommandName(cmd byte) string {
	switch cmd {
	case CmdIdentifier:
		return "identifier"
	case CmdThermalRequest:
		return "thermal_request"
	case CmdThermalReport:
		return "thermal_report"
	default:
		return "unknown"
	}
}
