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
	"errors"
	"fmt"
)

var (
	// ErrIncomplete means the buffer ends before a whole frame
	ErrIncomplete = errors.New("incomplete frame")
	// ErrFrameCorrupted is a bad length checksum or direction byte
	ErrFrameCorrupted = errors.New("frame corrupted")
	// ErrChecksumMismatch is a bad data checksum; the sender should be NACKed
	ErrChecksumMismatch = errors.New("frame checksum mismatch")
	// ErrDataTooLarge means the command does not fit a normal frame
	ErrDataTooLarge = errors.New("frame data too large")
)

// Kind identifies what Parse found
type Kind int

const (
	KindData Kind = iota
	KindAck
	KindNack
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindAck:
		return "ack"
	case KindNack:
		return "nack"
	default:
		return "unknown"
	}
}

// CalculateChecksum returns the 8-bit sum of data
func CalculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// ChecksumValid reports whether data, including its trailing checksum byte,
// sums to zero
func ChecksumValid(data []byte) bool {
	return CalculateChecksum(data) == 0
}

// CalculateDataChecksum returns the DCS for a frame body starting with tfi
func CalculateDataChecksum(tfi byte, data []byte) byte {
	return ^(tfi + CalculateChecksum(data)) + 1
}

// CalculateLengthChecksum returns the LCS for a length byte
func CalculateLengthChecksum(length byte) byte {
	return ^length + 1
}

// Build encodes a host-to-PN532 command frame
func Build(cmd byte, args []byte) ([]byte, error) {
	dataLen := 2 + len(args) // TFI + cmd + args
	if dataLen > MaxFrameDataLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrDataTooLarge, dataLen)
	}

	frm := make([]byte, 0, Overhead+dataLen)
	frm = append(frm, Preamble, StartCode1, StartCode2)
	frm = append(frm, byte(dataLen), CalculateLengthChecksum(byte(dataLen)))
	frm = append(frm, HostToPn532, cmd)
	frm = append(frm, args...)
	frm = append(frm, CalculateDataChecksum(HostToPn532, append([]byte{cmd}, args...)), Postamble)
	return frm, nil
}

// Parse looks for one frame in buf. n is the number of leading bytes of buf
// the caller may discard, which includes any noise before the start code.
// With ErrIncomplete, n only covers that noise and the caller should read
// more bytes and try again.
func Parse(buf []byte) (kind Kind, data []byte, n int, err error) {
	off := findStart(buf)
	if off < 0 {
		// Keep a trailing zero, it may be the first half of a start code
		if len(buf) > 0 && buf[len(buf)-1] == StartCode1 {
			return KindData, nil, len(buf) - 1, ErrIncomplete
		}
		return KindData, nil, len(buf), ErrIncomplete
	}

	i := off + 2
	if len(buf) < i+2 {
		return KindData, nil, off, ErrIncomplete
	}

	length, lcs := buf[i], buf[i+1]
	switch {
	case length == 0x00 && lcs == 0xFF:
		return KindAck, nil, withPostamble(buf, i+2), nil
	case length == 0xFF && lcs == 0x00:
		return KindNack, nil, withPostamble(buf, i+2), nil
	case length+lcs != 0:
		return KindData, nil, i + 2, fmt.Errorf("%w: length checksum", ErrFrameCorrupted)
	case length == 0:
		return KindData, nil, i + 2, fmt.Errorf("%w: empty body", ErrFrameCorrupted)
	}

	end := i + 2 + int(length)
	if len(buf) < end+1 {
		return KindData, nil, off, ErrIncomplete
	}

	body := buf[i+2 : end]
	if !ChecksumValid(buf[i+2 : end+1]) {
		return KindData, nil, end + 1, ErrChecksumMismatch
	}
	if body[0] != Pn532ToHost {
		return KindData, nil, end + 1, fmt.Errorf("%w: direction byte 0x%02X", ErrFrameCorrupted, body[0])
	}

	data = make([]byte, len(body)-1)
	copy(data, body[1:])
	return KindData, data, withPostamble(buf, end+1), nil
}

// findStart returns the index of the 0x00 0xFF start code or -1
func findStart(buf []byte) int {
	for off := 0; off < len(buf)-1; off++ {
		if buf[off] == StartCode1 && buf[off+1] == StartCode2 {
			return off
		}
	}
	return -1
}

func withPostamble(buf []byte, n int) int {
	if n < len(buf) && buf[n] == Postamble {
		return n + 1
	}
	return n
}
