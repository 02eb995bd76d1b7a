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

package pn532

import (
	"context"
	"errors"
	"fmt"
	"time"

	nfcbridge "github.com/ZaparooProject/go-nfcbridge"
	"github.com/rs/zerolog"
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// ActivationRetries is written to MxRtyPassiveActivation during Init
	ActivationRetries byte
	// ReleaseTargets sends InRelease after every detection
	ReleaseTargets bool
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		ActivationRetries: 0xFF,
	}
}

// Device represents a PN532 NFC reader device
//
// Thread Safety: Device is NOT thread-safe. All methods must be called from
// a single goroutine, which the bridge loop guarantees.
type Device struct {
	transport Transport
	config    *DeviceConfig
	firmware  *FirmwareVersion
	log       zerolog.Logger
}

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithActivationRetries sets the passive activation retry count
func WithActivationRetries(retries byte) Option {
	return func(d *Device) error {
		d.config.ActivationRetries = retries
		return nil
	}
}

// WithReleaseTargets releases detected targets after reading their UID
func WithReleaseTargets(release bool) Option {
	return func(d *Device) error {
		d.config.ReleaseTargets = release
		return nil
	}
}

// WithLogger sets the device logger
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Device) error {
		d.log = logger.With().Str("component", "pn532").Logger()
		return nil
	}
}

// New creates a new PN532 device with the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	if transport == nil {
		return nil, errors.New("transport cannot be nil")
	}

	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
		log:       zerolog.Nop(),
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// Init probes the chip and configures it as an initiator. Any failure here
// means no usable reader is attached.
func (d *Device) Init(ctx context.Context) error {
	fw, err := d.GetFirmwareVersion(ctx)
	if err != nil {
		return err
	}
	d.log.Info().
		Str("firmware", fw.String()).
		Hex("support", []byte{fw.Support}).
		Str("transport", string(d.transport.Type())).
		Msg("found PN532")

	if err := d.SAMConfig(ctx); err != nil {
		return err
	}
	if err := d.SetPassiveActivationRetries(ctx, d.config.ActivationRetries); err != nil {
		return err
	}

	d.firmware = fw
	return nil
}

// Firmware returns the version read by Init, or nil before Init
func (d *Device) Firmware() *FirmwareVersion {
	return d.firmware
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// ReadTargetID waits up to timeout for an ISO14443A target. A target that
// does not show up in time is a miss, not an error.
func (d *Device) ReadTargetID(ctx context.Context, timeout time.Duration) ([]byte, bool, error) {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	uid, err := d.inListPassiveTarget(pollCtx)
	if err != nil {
		if ctx.Err() == nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, nfcbridge.ErrTransportTimeout)) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("InListPassiveTarget: %w", err)
	}
	if uid == nil {
		return nil, false, nil
	}

	if d.config.ReleaseTargets {
		if err := d.inRelease(ctx); err != nil {
			d.log.Debug().Err(err).Msg("failed to release target")
		}
	}
	return uid, true, nil
}

// Close closes the transport
func (d *Device) Close() error {
	if err := d.transport.Close(); err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}

var (
	_ nfcbridge.TagReader   = (*Device)(nil)
	_ nfcbridge.Initializer = (*Device)(nil)
)
