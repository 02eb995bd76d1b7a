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

// Package uart provides the HSU (high speed UART) transport for the PN532
package uart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	nfcbridge "github.com/ZaparooProject/go-nfcbridge"
	"github.com/ZaparooProject/go-nfcbridge/internal/frame"
	"github.com/ZaparooProject/go-nfcbridge/internal/transport"
	"github.com/ZaparooProject/go-nfcbridge/pn532"
	"go.bug.st/serial"
)

const (
	defaultBaudRate = 115200

	// readTimeout is the serial read timeout; every read returns within it
	readTimeout = 10 * time.Millisecond

	defaultAckTimeout      = 100 * time.Millisecond
	defaultResponseTimeout = time.Second
	maxResponseRetries     = 3
)

// wakeSequence brings the PN532 out of power down on HSU
var wakeSequence = []byte{
	0x55, 0x55, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

type serialPort interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Transport implements pn532.Transport over a serial port
//
// Thread Safety: Transport is NOT thread-safe.
type Transport struct {
	port            serialPort
	portName        string
	buf             []byte
	scratch         []byte
	ackTimeout      time.Duration
	responseTimeout time.Duration
	awake           bool
}

// New opens portName at 115200 8N1
func New(portName string) (*Transport, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: defaultBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, nfcbridge.NewTransportError("open", portName, err, nfcbridge.ErrorTypePermanent)
	}

	t, err := newTransport(port, portName)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return t, nil
}

func newTransport(port serialPort, portName string) (*Transport, error) {
	if err := port.SetReadTimeout(readTimeout); err != nil {
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}
	return &Transport{
		port:            port,
		portName:        portName,
		scratch:         make([]byte, 64),
		ackTimeout:      defaultAckTimeout,
		responseTimeout: defaultResponseTimeout,
	}, nil
}

// SendCommand sends a command frame, waits for the ACK and then for the
// response. A response with a bad checksum is NACKed so the chip resends it.
// If ctx ends first the command is aborted with an ACK.
func (t *Transport) SendCommand(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.port == nil {
		return nil, nfcbridge.NewTransportError("sendCommand", t.portName,
			nfcbridge.ErrTransportClosed, nfcbridge.ErrorTypePermanent)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.responseTimeout)
		defer cancel()
	}

	frm, err := frame.Build(cmd, args)
	if err != nil {
		return nil, pn532.NewDataTooLargeError("sendCommand", t.portName)
	}

	if err := t.wake(); err != nil {
		return nil, err
	}

	t.buf = t.buf[:0]
	_ = t.port.ResetInputBuffer()

	if err := t.write(frm); err != nil {
		return nil, err
	}
	if err := t.waitAck(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	data, err := transport.WithRetry(ctx, transport.RetryConfig{
		Description: "receiveFrame",
		Port:        t.portName,
		MaxRetries:  maxResponseRetries,
		OnRetry:     t.sendNack,
	}, func() ([]byte, bool, error) {
		data, err := t.readResponse(ctx)
		if errors.Is(err, frame.ErrChecksumMismatch) || errors.Is(err, frame.ErrFrameCorrupted) {
			return nil, true, nil
		}
		return data, false, err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			t.abort()
			return nil, ctxErr
		}
		return nil, err
	}
	return data, nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", t.portName, err)
	}
	return nil
}

// IsConnected returns true if the port is open
func (t *Transport) IsConnected() bool {
	return t.port != nil
}

// Type returns the transport type
func (*Transport) Type() pn532.TransportType {
	return pn532.TransportUART
}

func (t *Transport) wake() error {
	if t.awake {
		return nil
	}
	if err := t.write(wakeSequence); err != nil {
		return err
	}
	t.awake = true
	return nil
}

// waitAck reads until an ACK frame arrives or the ACK timeout passes
func (t *Transport) waitAck(ctx context.Context) error {
	deadline := time.Now().Add(t.ackTimeout)
	for {
		kind, _, err := t.readFrame(ctx, deadline)
		switch {
		case errors.Is(err, nfcbridge.ErrTransportTimeout):
			return pn532.NewNoACKError("waitAck", t.portName)
		case err != nil && (ctx.Err() != nil || errors.Is(err, nfcbridge.ErrTransportRead)):
			return err
		case err != nil:
			// Noise on the line; keep looking until the deadline
			if time.Now().After(deadline) {
				return pn532.NewNoACKError("waitAck", t.portName)
			}
		case kind == frame.KindAck:
			return nil
		case kind == frame.KindNack:
			return pn532.NewNoACKError("waitAck", t.portName)
		}
	}
}

// readResponse returns the next information frame, skipping stray ACKs
func (t *Transport) readResponse(ctx context.Context) ([]byte, error) {
	for {
		kind, data, err := t.readFrame(ctx, time.Time{})
		if err != nil {
			return nil, err
		}
		if kind == frame.KindData {
			return data, nil
		}
	}
}

// readFrame parses one frame from the receive buffer, reading more bytes
// from the port as needed. A zero deadline waits until ctx is done.
func (t *Transport) readFrame(ctx context.Context, deadline time.Time) (frame.Kind, []byte, error) {
	for {
		kind, data, n, err := frame.Parse(t.buf)
		t.buf = append(t.buf[:0], t.buf[n:]...)
		if err == nil {
			return kind, data, nil
		}
		if !errors.Is(err, frame.ErrIncomplete) {
			return kind, nil, err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return kind, nil, ctxErr
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return kind, nil, nfcbridge.NewTimeoutError("readFrame", t.portName)
		}
		if err := t.fill(); err != nil {
			return kind, nil, err
		}
	}
}

func (t *Transport) fill() error {
	n, err := t.port.Read(t.scratch)
	if n > 0 {
		t.buf = append(t.buf, t.scratch[:n]...)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nfcbridge.NewTransportError("read", t.portName,
			fmt.Errorf("%w: %w", nfcbridge.ErrTransportRead, err), nfcbridge.ErrorTypeTransient)
	}
	return nil
}

func (t *Transport) write(data []byte) error {
	if _, err := t.port.Write(data); err != nil {
		return nfcbridge.NewTransportError("write", t.portName,
			fmt.Errorf("%w: %w", nfcbridge.ErrTransportWrite, err), nfcbridge.ErrorTypeTransient)
	}
	return nil
}

func (t *Transport) sendNack() error {
	return t.write(frame.NackFrame)
}

// abort cancels the command in progress; the PN532 drops it on any ACK
func (t *Transport) abort() {
	_ = t.write(frame.AckFrame)
}

var _ pn532.Transport = (*Transport)(nil)
