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

// Package indicator drives the line that signals a detection in progress
package indicator

import (
	"fmt"

	nfcbridge "github.com/ZaparooProject/go-nfcbridge"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// GPIO is an indicator on a digital output. With activeLow the line is
// driven low while active, which is how a LED wired to the supply is lit.
type GPIO struct {
	pin       gpio.PinOut
	activeLow bool
	active    bool
}

// New wraps an output pin
func New(pin gpio.PinOut, activeLow bool) *GPIO {
	return &GPIO{pin: pin, activeLow: activeLow}
}

// Open initialises the periph host drivers and looks up the pin by name,
// e.g. "GPIO17"
func Open(name string, activeLow bool) (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	return New(pin, activeLow), nil
}

// Set drives the line to the active or idle level
func (g *GPIO) Set(active bool) error {
	level := gpio.Level(active != g.activeLow)
	if err := g.pin.Out(level); err != nil {
		return fmt.Errorf("set %s to %s: %w", g.pin, level, err)
	}
	g.active = active
	return nil
}

// Active reports the last level successfully set
func (g *GPIO) Active() bool {
	return g.active
}

// Nop is an indicator with nothing attached
type Nop struct{}

// Set does nothing
func (Nop) Set(bool) error { return nil }

var (
	_ nfcbridge.Indicator = (*GPIO)(nil)
	_ nfcbridge.Indicator = Nop{}
)
