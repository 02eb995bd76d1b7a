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

// Package i2c provides I2C transport implementation for PN532
package i2c

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	nfcbridge "github.com/ZaparooProject/go-nfcbridge"
	"github.com/ZaparooProject/go-nfcbridge/internal/frame"
	"github.com/ZaparooProject/go-nfcbridge/internal/transport"
	"github.com/ZaparooProject/go-nfcbridge/pn532"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// DefaultAddress is the 7-bit PN532 I2C address
	DefaultAddress = 0x24

	pn532Ready = 0x01

	// Max clock frequency (400 kHz).
	maxClockFreq = 400 * physic.KiloHertz

	// maxResponseData bounds the data read per response; every response
	// this package asks for is shorter
	maxResponseData = 48
	readSize        = 1 + frame.Overhead + maxResponseData

	defaultAckTimeout      = 50 * time.Millisecond
	defaultResponseTimeout = time.Second
	maxResponseRetries     = 3
)

// Transport implements the pn532.Transport interface for I2C communication
type Transport struct {
	bus             i2c.BusCloser
	dev             *i2c.Dev
	busName         string
	ackTimeout      time.Duration
	responseTimeout time.Duration
}

// New opens busName (e.g. "/dev/i2c-1" or "1") and talks to the PN532 at
// the default address
func New(busName string) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, nfcbridge.NewTransportError("open", busName, err, nfcbridge.ErrorTypePermanent)
	}

	// Ignore error, continue with default speed
	_ = bus.SetSpeed(maxClockFreq)

	return newTransport(bus, busName, DefaultAddress), nil
}

func newTransport(bus i2c.BusCloser, busName string, addr uint16) *Transport {
	return &Transport{
		bus:             bus,
		dev:             &i2c.Dev{Addr: addr, Bus: bus},
		busName:         busName,
		ackTimeout:      defaultAckTimeout,
		responseTimeout: defaultResponseTimeout,
	}
}

// SendCommand sends a command to the PN532 and waits for the response. If
// ctx ends first the command is aborted with an ACK.
func (t *Transport) SendCommand(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.dev == nil {
		return nil, nfcbridge.NewTransportError("sendCommand", t.busName,
			nfcbridge.ErrTransportClosed, nfcbridge.ErrorTypePermanent)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.responseTimeout)
		defer cancel()
	}

	frm, err := frame.Build(cmd, args)
	if err != nil {
		return nil, pn532.NewDataTooLargeError("sendFrame", t.busName)
	}
	if err := t.dev.Tx(frm, nil); err != nil {
		return nil, t.busError("sendFrame", err)
	}

	if err := t.waitAck(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	data, err := transport.WithRetry(ctx, transport.RetryConfig{
		Description: "receiveFrame",
		Port:        t.busName,
		MaxRetries:  maxResponseRetries,
		OnRetry:     t.sendNack,
	}, func() ([]byte, bool, error) {
		data, err := t.receiveFrame(ctx)
		if isCorrupt(err) {
			return nil, true, nil
		}
		return data, false, err
	})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, nfcbridge.ErrTransportTimeout) {
			t.abort()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return data, nil
}

// Close closes the bus
func (t *Transport) Close() error {
	if t.bus == nil {
		return nil
	}
	err := t.bus.Close()
	t.bus = nil
	t.dev = nil
	if err != nil {
		return fmt.Errorf("failed to close I2C bus %s: %w", t.busName, err)
	}
	return nil
}

// IsConnected returns true if the bus is open
func (t *Transport) IsConnected() bool {
	return t.dev != nil
}

// Type returns the transport type
func (*Transport) Type() pn532.TransportType {
	return pn532.TransportI2C
}

// waitAck polls the status byte until the ACK frame is ready
func (t *Transport) waitAck(ctx context.Context) error {
	_, err := transport.TimeoutRetry(ctx, t.ackTimeout, t.busName, func() (struct{}, bool, error) {
		buf := make([]byte, 1+len(frame.AckFrame))
		if err := t.dev.Tx(nil, buf); err != nil {
			return struct{}{}, false, t.busError("waitAck", err)
		}
		if buf[0] != pn532Ready {
			return struct{}{}, true, nil
		}
		if !bytes.Equal(buf[1:], frame.AckFrame) {
			return struct{}{}, false, pn532.NewNoACKError("waitAck", t.busName)
		}
		return struct{}{}, false, nil
	})
	if errors.Is(err, nfcbridge.ErrTransportTimeout) {
		return pn532.NewNoACKError("waitAck", t.busName)
	}
	return err
}

// receiveFrame waits for the chip to be ready and reads one response
func (t *Transport) receiveFrame(ctx context.Context) ([]byte, error) {
	deadline, _ := ctx.Deadline()
	return transport.TimeoutRetry(ctx, time.Until(deadline), t.busName, func() ([]byte, bool, error) {
		buf := make([]byte, readSize)
		if err := t.dev.Tx(nil, buf); err != nil {
			return nil, false, t.busError("receiveFrame", err)
		}
		if buf[0] != pn532Ready {
			return nil, true, nil
		}

		kind, data, _, err := frame.Parse(buf[1:])
		if err != nil {
			return nil, false, err
		}
		if kind != frame.KindData {
			return nil, false, fmt.Errorf("%w: got %s instead of a response", frame.ErrFrameCorrupted, kind)
		}
		return data, false, nil
	})
}

// isCorrupt reports whether a response should be NACKed and read again
func isCorrupt(err error) bool {
	return errors.Is(err, frame.ErrChecksumMismatch) ||
		errors.Is(err, frame.ErrFrameCorrupted) ||
		errors.Is(err, frame.ErrIncomplete)
}

func (t *Transport) sendNack() error {
	if err := t.dev.Tx(frame.NackFrame, nil); err != nil {
		return t.busError("sendNack", err)
	}
	return nil
}

// abort cancels the command in progress; the PN532 drops it on any ACK
func (t *Transport) abort() {
	_ = t.dev.Tx(frame.AckFrame, nil)
}

func (t *Transport) busError(op string, err error) error {
	return nfcbridge.NewTransportError(op, t.busName,
		fmt.Errorf("%w: %w", nfcbridge.ErrCommunicationFailed, err), nfcbridge.ErrorTypeTransient)
}

var _ pn532.Transport = (*Transport)(nil)
