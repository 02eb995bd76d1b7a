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
	"errors"
	"fmt"
	"io"
)

// Protocol errors
var (
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrInvalidFrame    = errors.New("invalid frame")
)

// Frame is one decoded protocol message.
type Frame struct {
	Payload []byte
	Command byte
}

// ByteSource is the minimal read side of a byte stream the decoder needs.
type ByteSource interface {
	// Buffered returns the number of bytes readable without blocking
	Buffered() int
	io.ByteReader
}

// Checksum returns the XOR of the header, command, length and payload bytes
func Checksum(command byte, payload []byte) byte {
	sum := Header ^ command ^ byte(len(payload))
	for _, b := range payload {
		sum ^= b
	}
	return sum
}

// Encode builds the wire representation of a frame.
// Payloads longer than MaxPayloadSize are rejected.
func Encode(command byte, payload []byte) ([]byte, error) {
	return AppendFrame(make([]byte, 0, Overhead+len(payload)), command, payload)
}

// AppendFrame appends the encoded frame to dst and returns the extended slice
func AppendFrame(dst []byte, command byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return dst, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}

	dst = append(dst, Header, command, byte(len(payload)))
	dst = append(dst, payload...)
	return append(dst, Checksum(command, payload), Footer), nil
}

// TryDecode attempts to read one frame from src.
//
// Nothing is consumed when fewer than MinFrameSize bytes are buffered.
// Otherwise every byte read is consumed, whether or not the frame turns out
// valid: a bad header byte is dropped on its own and no scanning forward for
// the next header takes place. A declared length larger than MaxPayloadSize,
// or larger than what is currently buffered, rejects the frame before any
// payload is read. No state is carried between calls.
//
// A length byte corrupted to a smaller value cannot be detected here when
// the bytes that follow happen to satisfy the footer and checksum, since the
// rest of the stream is not part of the frame. Decode, which is handed the
// whole frame, rejects that case.
func TryDecode(src ByteSource) (Frame, bool) {
	if src.Buffered() < MinFrameSize {
		return Frame{}, false
	}

	header, err := src.ReadByte()
	if err != nil || header != Header {
		return Frame{}, false
	}

	var hdr [2]byte
	if !readFull(src, hdr[:]) {
		return Frame{}, false
	}
	command, length := hdr[0], int(hdr[1])

	// payload plus checksum and footer must already be here
	if length > MaxPayloadSize || src.Buffered() < length+2 {
		return Frame{}, false
	}

	payload := make([]byte, length)
	if !readFull(src, payload) {
		return Frame{}, false
	}

	var trailer [2]byte
	if !readFull(src, trailer[:]) {
		return Frame{}, false
	}

	if !valid(command, payload, trailer[0], trailer[1]) {
		return Frame{}, false
	}

	return Frame{Command: command, Payload: payload}, true
}

// Decode decodes a single frame that must span all of data
func Decode(data []byte) (Frame, error) {
	f, ok := TryDecode(&sliceSource{buf: data})
	if !ok || len(data) != Overhead+len(f.Payload) {
		return Frame{}, ErrInvalidFrame
	}
	return f, nil
}

// valid checks the footer first, then the checksum
func valid(command byte, payload []byte, checksum, footer byte) bool {
	if footer != Footer {
		return false
	}
	return checksum == Checksum(command, payload)
}

func readFull(src io.ByteReader, buf []byte) bool {
	for i := range buf {
		b, err := src.ReadByte()
		if err != nil {
			return false
		}
		buf[i] = b
	}
	return true
}

type sliceSource struct {
	buf []byte
}

func (s *sliceSource) Buffered() int {
	return len(s.buf)
}

func (s *sliceSource) ReadByte() (byte, error) {
	if len(s.buf) == 0 {
		return 0, io.EOF
	}
	b := s.buf[0]
	s.buf = s.buf[1:]
	return b, nil
}
