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

// Package detection finds the serial port the bridge board is attached to
// and the I2C buses its sensors may sit on.
package detection

import (
	"errors"
	"fmt"
	"sort"

	"go.bug.st/serial/enumerator"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// ErrNoDevicesFound is returned when no candidate port survives filtering
var ErrNoDevicesFound = errors.New("no devices found")

// KnownBridges lists USB serial chips commonly found on the microcontroller
// boards that run the bridge. Matching ports sort first.
var KnownBridges = map[string]string{
	"1A86:7523": "CH340",
	"1A86:55D4": "CH9102",
	"10C4:EA60": "CP210x",
	"0403:6001": "FT232R",
	"2341:0043": "Arduino Uno",
	"2341:0001": "Arduino Uno",
	"303A:1001": "ESP32-S3 USB JTAG/serial",
}

// Options filters the detected ports
type Options struct {
	Blocklist   []string
	IgnorePaths []string
	// USBOnly drops ports without USB IDs (built-in UARTs, Bluetooth)
	USBOnly bool
}

// DefaultOptions returns the filters used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Blocklist: DefaultBlocklist(),
	}
}

// PortInfo describes one candidate serial port
type PortInfo struct {
	Path   string
	VIDPID string
	Serial string
	Name   string
	IsUSB  bool
}

// Known reports whether the port uses a USB chip from KnownBridges
func (p PortInfo) Known() bool {
	_, ok := KnownBridges[p.VIDPID]
	return ok
}

func (p PortInfo) String() string {
	if p.VIDPID == "" {
		return p.Path
	}
	if p.Name != "" {
		return fmt.Sprintf("%s (%s %s)", p.Path, p.VIDPID, p.Name)
	}
	return fmt.Sprintf("%s (%s)", p.Path, p.VIDPID)
}

// ListPorts enumerates serial ports, drops blocked and ignored ones, and
// returns known bridge chips first
func ListPorts(opts Options) ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	return filterPorts(details, opts), nil
}

// FindPort returns the best candidate port
func FindPort(opts Options) (PortInfo, error) {
	ports, err := ListPorts(opts)
	if err != nil {
		return PortInfo{}, err
	}
	if len(ports) == 0 {
		return PortInfo{}, ErrNoDevicesFound
	}
	return ports[0], nil
}

func filterPorts(details []*enumerator.PortDetails, opts Options) []PortInfo {
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil || d.Name == "" {
			continue
		}

		info := PortInfo{
			Path:   d.Name,
			Serial: d.SerialNumber,
			IsUSB:  d.IsUSB,
		}
		if d.IsUSB {
			info.VIDPID = FormatVIDPID(d.VID, d.PID)
			info.Name = KnownBridges[info.VIDPID]
			if info.Name == "" {
				info.Name = d.Product
			}
		}

		switch {
		case opts.USBOnly && !info.IsUSB:
			continue
		case IsBlocked(info.VIDPID, opts.Blocklist):
			continue
		case IsPathIgnored(info.Path, opts.IgnorePaths):
			continue
		}
		ports = append(ports, info)
	}

	sort.SliceStable(ports, func(i, j int) bool {
		return ports[i].Known() && !ports[j].Known()
	})
	return ports
}

// ListI2CBuses initialises the periph host drivers and returns the names of
// the registered I2C buses, e.g. "/dev/i2c-1"
func ListI2CBuses() ([]string, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	return registeredI2CBuses(), nil
}

func registeredI2CBuses() []string {
	refs := i2creg.All()
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	return names
}
