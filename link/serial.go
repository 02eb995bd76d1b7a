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

// Package link carries bridge frames over a serial port
package link

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	nfcbridge "github.com/ZaparooProject/go-nfcbridge"
	"go.bug.st/serial"
)

// Defaults for the host link
const (
	DefaultBaudRate    = 115200
	DefaultFillTimeout = 5 * time.Millisecond
	DefaultMaxPending  = 4096
)

// serialPort is the subset of serial.Port the link needs
type serialPort interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// Config describes how to open the host link
type Config struct {
	Port     string
	BaudRate int
	// FillTimeout bounds how long Buffered waits for new bytes
	FillTimeout time.Duration
	// MaxPending caps bytes held between reads; the oldest are dropped
	MaxPending int
}

// DefaultConfig returns the 8N1 115200 baud settings of the reference board
func DefaultConfig(port string) Config {
	return Config{
		Port:        port,
		BaudRate:    DefaultBaudRate,
		FillTimeout: DefaultFillTimeout,
		MaxPending:  DefaultMaxPending,
	}
}

// Port is a serial link with the non-blocking byte access the bridge loop
// needs. It also implements io.Reader for host-side tools.
type Port struct {
	port    serialPort
	name    string
	pending []byte
	scratch []byte
	cfg     Config
	dropped int
	closed  bool
}

// Open opens the serial device named in cfg
func Open(cfg Config) (*Port, error) {
	if cfg.Port == "" {
		return nil, errors.New("serial port name cannot be empty")
	}
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	p, err := serial.Open(cfg.Port, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, nfcbridge.NewTransportError("open", cfg.Port, err, classify(err))
	}

	port, err := newPort(p, cfg)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return port, nil
}

func newPort(p serialPort, cfg Config) (*Port, error) {
	if cfg.FillTimeout <= 0 {
		cfg.FillTimeout = DefaultFillTimeout
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = DefaultMaxPending
	}
	if err := p.SetReadTimeout(cfg.FillTimeout); err != nil {
		return nil, nfcbridge.NewTransportError("setReadTimeout", cfg.Port, err, nfcbridge.ErrorTypePermanent)
	}

	return &Port{
		port:    p,
		name:    cfg.Port,
		cfg:     cfg,
		scratch: make([]byte, 256),
	}, nil
}

// Name returns the device path
func (p *Port) Name() string {
	return p.name
}

// Buffered pulls whatever the port has ready and returns the number of bytes
// that ReadByte can return without waiting. Read errors are treated as no
// new data.
func (p *Port) Buffered() int {
	_ = p.fill()
	return len(p.pending)
}

// ReadByte returns the next buffered byte or ErrNoData
func (p *Port) ReadByte() (byte, error) {
	if len(p.pending) == 0 {
		if err := p.fill(); err != nil {
			return 0, err
		}
		if len(p.pending) == 0 {
			return 0, nfcbridge.ErrNoData
		}
	}
	b := p.pending[0]
	p.pending = p.pending[1:]
	return b, nil
}

// Read blocks until at least one byte is available
func (p *Port) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	for len(p.pending) == 0 {
		if err := p.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(buf, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

// Write sends all of data to the host
func (p *Port) Write(data []byte) (int, error) {
	if p.closed {
		return 0, nfcbridge.NewTransportError("write", p.name, nfcbridge.ErrTransportClosed, nfcbridge.ErrorTypePermanent)
	}

	written := 0
	for written < len(data) {
		n, err := p.port.Write(data[written:])
		written += n
		if err != nil {
			return written, nfcbridge.NewTransportError("write", p.name,
				fmt.Errorf("%w: %w", nfcbridge.ErrTransportWrite, err), classify(err))
		}
		if n == 0 {
			return written, nfcbridge.NewTransportError("write", p.name, io.ErrShortWrite, nfcbridge.ErrorTypeTransient)
		}
	}
	return written, nil
}

// Dropped returns how many inbound bytes were discarded because nobody read
// them in time
func (p *Port) Dropped() int {
	return p.dropped
}

// Close closes the underlying device
func (p *Port) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.port.Close(); err != nil {
		return fmt.Errorf("close %s: %w", p.name, err)
	}
	return nil
}

// fill performs one read with the fill timeout and appends what arrived
func (p *Port) fill() error {
	if p.closed {
		return nfcbridge.NewTransportError("read", p.name, nfcbridge.ErrTransportClosed, nfcbridge.ErrorTypePermanent)
	}

	n, err := p.port.Read(p.scratch)
	if n > 0 {
		p.pending = append(p.pending, p.scratch[:n]...)
		if excess := len(p.pending) - p.cfg.MaxPending; excess > 0 {
			p.pending = p.pending[excess:]
			p.dropped += excess
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nfcbridge.NewTransportError("read", p.name,
			fmt.Errorf("%w: %w", nfcbridge.ErrTransportRead, err), classify(err))
	}
	return nil
}

// classify marks unplugged or misconfigured ports as permanent failures
func classify(err error) nfcbridge.ErrorType {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortNotFound, serial.PortClosed, serial.InvalidSerialPort,
			serial.PermissionDenied, serial.InvalidSpeed, serial.InvalidDataBits,
			serial.InvalidParity, serial.InvalidStopBits:
			return nfcbridge.ErrorTypePermanent
		default:
			return nfcbridge.ErrorTypeTransient
		}
	}

	// serial.Open hands back the raw errno for most open failures
	if errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ENODEV) ||
		errors.Is(err, syscall.ENXIO) || errors.Is(err, syscall.EACCES) {
		return nfcbridge.ErrorTypePermanent
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such device") || strings.Contains(msg, "device not configured") {
		return nfcbridge.ErrorTypePermanent
	}
	return nfcbridge.ErrorTypeTransient
}

var _ nfcbridge.Transport = (*Port)(nil)
