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
	"fmt"
)

// PN532 command codes
const (
	cmdGetFirmwareVersion  = 0x02
	cmdSAMConfiguration    = 0x14
	cmdRFConfiguration     = 0x32
	cmdInListPassiveTarget = 0x4A
	cmdInRelease           = 0x52
)

const (
	// pn532IC is the IC byte reported by GetFirmwareVersion
	pn532IC = 0x32

	// baudRate106TypeA selects ISO14443A targets for InListPassiveTarget
	baudRate106TypeA = 0x00

	// rfItemMaxRetries is the RFConfiguration item for retry counts
	rfItemMaxRetries = 0x05

	// maxUIDLength is the longest ISO14443A UID (triple size)
	maxUIDLength = 10
)

// FirmwareVersion is the reply to GetFirmwareVersion
type FirmwareVersion struct {
	IC       byte
	Version  byte
	Revision byte
	Support  byte
}

// String returns the version as "1.6"
func (f FirmwareVersion) String() string {
	return fmt.Sprintf("%d.%d", f.Version, f.Revision)
}

// SupportsISO14443A reports whether the chip can talk to type A targets
func (f FirmwareVersion) SupportsISO14443A() bool {
	return f.Support&0x01 != 0
}

// GetFirmwareVersion queries the chip. An answer from anything but a PN532
// is ErrInvalidFirmware.
func (d *Device) GetFirmwareVersion(ctx context.Context) (*FirmwareVersion, error) {
	resp, err := d.transport.SendCommand(ctx, cmdGetFirmwareVersion, nil)
	if err != nil {
		return nil, fmt.Errorf("GetFirmwareVersion: %w", err)
	}
	if len(resp) < 5 || resp[0] != cmdGetFirmwareVersion+1 {
		return nil, fmt.Errorf("%w: GetFirmwareVersion % X", ErrUnexpectedResponse, resp)
	}
	if resp[1] != pn532IC {
		return nil, fmt.Errorf("%w: IC 0x%02X", ErrInvalidFirmware, resp[1])
	}

	return &FirmwareVersion{
		IC:       resp[1],
		Version:  resp[2],
		Revision: resp[3],
		Support:  resp[4],
	}, nil
}

// SAMConfig puts the SAM in normal mode, with the chip driving IRQ, so the
// reader can act as an initiator
func (d *Device) SAMConfig(ctx context.Context) error {
	// mode normal, timeout 50ms*20, use IRQ
	resp, err := d.transport.SendCommand(ctx, cmdSAMConfiguration, []byte{0x01, 0x14, 0x01})
	if err != nil {
		return fmt.Errorf("SAMConfiguration: %w", err)
	}
	if len(resp) < 1 || resp[0] != cmdSAMConfiguration+1 {
		return fmt.Errorf("%w: SAMConfiguration % X", ErrUnexpectedResponse, resp)
	}
	return nil
}

// SetPassiveActivationRetries sets how many times the chip retries target
// activation per InListPassiveTarget. 0xFF retries forever, which leaves the
// poll timeout as the only bound.
func (d *Device) SetPassiveActivationRetries(ctx context.Context, retries byte) error {
	// MxRtyATR, MxRtyPSL, MxRtyPassiveActivation
	args := []byte{rfItemMaxRetries, 0xFF, 0x01, retries}
	resp, err := d.transport.SendCommand(ctx, cmdRFConfiguration, args)
	if err != nil {
		return fmt.Errorf("RFConfiguration: %w", err)
	}
	if len(resp) < 1 || resp[0] != cmdRFConfiguration+1 {
		return fmt.Errorf("%w: RFConfiguration % X", ErrUnexpectedResponse, resp)
	}
	return nil
}

// inListPassiveTarget asks for one type A target and returns its UID, or nil
// when the chip reports no target
func (d *Device) inListPassiveTarget(ctx context.Context) ([]byte, error) {
	resp, err := d.transport.SendCommand(ctx, cmdInListPassiveTarget, []byte{0x01, baudRate106TypeA})
	if err != nil {
		return nil, err
	}
	return parseTargetUID(resp)
}

// parseTargetUID extracts the UID from an InListPassiveTarget response:
// [0x4B, NbTg, Tg, ATQA(2), SAK, UIDLen, UID...]
func parseTargetUID(resp []byte) ([]byte, error) {
	if len(resp) < 2 || resp[0] != cmdInListPassiveTarget+1 {
		return nil, fmt.Errorf("%w: InListPassiveTarget % X", ErrUnexpectedResponse, resp)
	}
	if resp[1] == 0 {
		return nil, nil
	}
	if len(resp) < 7 {
		return nil, fmt.Errorf("%w: target data too short (%d bytes)", ErrUnexpectedResponse, len(resp))
	}

	uidLen := int(resp[6])
	if uidLen == 0 || uidLen > maxUIDLength || len(resp) < 7+uidLen {
		return nil, fmt.Errorf("%w: UID length %d", ErrUnexpectedResponse, uidLen)
	}

	uid := make([]byte, uidLen)
	copy(uid, resp[7:7+uidLen])
	return uid, nil
}

// inRelease releases all targets so the next poll sees a fresh activation
func (d *Device) inRelease(ctx context.Context) error {
	resp, err := d.transport.SendCommand(ctx, cmdInRelease, []byte{0x00})
	if err != nil {
		return fmt.Errorf("InRelease: %w", err)
	}
	if len(resp) < 2 || resp[0] != cmdInRelease+1 {
		return fmt.Errorf("%w: InRelease % X", ErrUnexpectedResponse, resp)
	}
	return nil
}
