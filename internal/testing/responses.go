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

// Package testing builds canned PN532 responses for transport and device tests
package testing

import "github.com/ZaparooProject/go-nfcbridge/internal/frame"

// BuildFirmwareVersionResponse creates a GetFirmwareVersion response
func BuildFirmwareVersionResponse() []byte {
	// IC, Ver, Rev, Support: PN532 version 1.6 revision 7, ISO14443A/B
	return []byte{0x03, 0x32, 0x01, 0x06, 0x07}
}

// BuildSAMConfigurationResponse creates a SAMConfiguration response
func BuildSAMConfigurationResponse() []byte {
	return []byte{0x15}
}

// BuildTagDetectionResponse creates an InListPassiveTarget response for one
// ISO14443A target. 7 byte UIDs get the NTAG ATQA, others the MIFARE one.
func BuildTagDetectionResponse(uid []byte) []byte {
	atqa := []byte{0x00, 0x04}
	sak := byte(0x08)
	if len(uid) == 7 {
		atqa = []byte{0x00, 0x44}
		sak = 0x00
	}

	response := []byte{0x4B, 0x01, 0x01} // Command + 1 target found, Tg 1
	response = append(response, atqa...)
	response = append(response, sak, byte(len(uid)))
	response = append(response, uid...)
	return response
}

// BuildNoTagResponse creates an empty InListPassiveTarget response
func BuildNoTagResponse() []byte {
	return []byte{0x4B, 0x00}
}

// BuildErrorResponse creates an error response for any command
func BuildErrorResponse(cmd, errorCode byte) []byte {
	return []byte{cmd + 1, errorCode}
}

// BuildResponseFrame wraps a response in a PN532-to-host information frame
func BuildResponseFrame(response []byte) []byte {
	length := byte(len(response) + 1)
	frm := []byte{frame.Preamble, frame.StartCode1, frame.StartCode2, length, frame.CalculateLengthChecksum(length)}
	frm = append(frm, frame.Pn532ToHost)
	frm = append(frm, response...)
	frm = append(frm, frame.CalculateDataChecksum(frame.Pn532ToHost, response), frame.Postamble)
	return frm
}

// Common UIDs for testing
var (
	// TestNTAG213UID is a sample NTAG213 UID
	TestNTAG213UID = []byte{0x04, 0xAB, 0xCD, 0xEF, 0x12, 0x34, 0x56}

	// TestMIFARE1KUID is a sample MIFARE Classic 1K UID
	TestMIFARE1KUID = []byte{0x12, 0x34, 0x56, 0x78}
)

// Command bytes for reference
const (
	CmdGetFirmwareVersion  = 0x02
	CmdSAMConfiguration    = 0x14
	CmdInListPassiveTarget = 0x4A
	CmdInRelease           = 0x52
)
