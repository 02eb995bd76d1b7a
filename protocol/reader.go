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
	"bufio"
	"io"
)

// Reader decodes frames from a blocking byte stream on the host side.
//
// Unlike TryDecode it resynchronises: bytes before a header are skipped and
// invalid frames are dropped, so text lines the device prints outside of
// frames never reach the caller.
type Reader struct {
	r         *bufio.Reader
	discarded int
}

// NewReader creates a frame reader on top of r
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, MaxFrameSize*2)}
}

// ReadFrame blocks until a valid frame arrives. Only errors from the
// underlying reader are returned; a stream that ends inside a frame yields
// io.ErrUnexpectedEOF.
func (r *Reader) ReadFrame() (Frame, error) {
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			return Frame{}, err
		}
		if b != Header {
			continue
		}

		f, ok, err := r.readBody()
		if err != nil {
			return Frame{}, err
		}
		if ok {
			return f, nil
		}
		r.discarded++
	}
}

// Discarded returns the number of candidate frames dropped as invalid
func (r *Reader) Discarded() int {
	return r.discarded
}

func (r *Reader) readBody() (Frame, bool, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
		return Frame{}, false, unexpected(err)
	}
	command, length := hdr[0], int(hdr[1])
	if length > MaxPayloadSize {
		return Frame{}, false, nil
	}

	body := make([]byte, length+2)
	if _, err := io.ReadFull(r.r, body); err != nil {
		return Frame{}, false, unexpected(err)
	}

	payload := body[:length]
	if !valid(command, payload, body[length], body[length+1]) {
		return Frame{}, false, nil
	}
	return Frame{Command: command, Payload: payload}, true, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
