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

// Package amg88xx reads the Panasonic AMG88xx (Grid-EYE) 8x8 thermal array
// over I2C
package amg88xx

import (
	"context"
	"errors"
	"fmt"
	"time"

	nfcbridge "github.com/ZaparooProject/go-nfcbridge"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	// DefaultAddress is the address with AD_SELECT pulled high
	DefaultAddress = 0x69
	// AlternateAddress is the address with AD_SELECT pulled low
	AlternateAddress = 0x68

	// Pixels is the number of elements in the array
	Pixels = 64
)

// Registers
const (
	regPowerControl = 0x00
	regReset        = 0x01
	regFrameRate    = 0x02
	regThermistor   = 0x0E
	regPixelBase    = 0x80
)

const (
	powerNormal  = 0x00
	initialReset = 0x3F
	frameRate10  = 0x00

	pixelResolution      = 0.25
	thermistorResolution = 0.0625

	// settleTime is how long the sensor needs after a reset before the
	// first frame is valid
	settleTime = 100 * time.Millisecond
)

// ErrPixelOutOfRange is returned for pixel indexes outside [0,64)
var ErrPixelOutOfRange = errors.New("pixel index out of range")

// Sensor is an AMG88xx on an I2C bus
type Sensor struct {
	dev    *i2c.Dev
	closer interface{ Close() error }
	settle time.Duration
}

// New creates a sensor on an already opened bus
func New(bus i2c.Bus, addr uint16) *Sensor {
	return &Sensor{
		dev:    &i2c.Dev{Addr: addr, Bus: bus},
		settle: settleTime,
	}
}

// Open initialises the periph host drivers, opens busName and returns a
// sensor that closes the bus on Close
func Open(busName string, addr uint16) (*Sensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	s := New(bus, addr)
	s.closer = bus
	return s, nil
}

// Init puts the sensor in normal mode at 10 frames per second. A sensor
// that does not acknowledge its address fails here.
func (s *Sensor) Init(ctx context.Context) error {
	writes := [][]byte{
		{regPowerControl, powerNormal},
		{regReset, initialReset},
		{regFrameRate, frameRate10},
	}
	for _, w := range writes {
		if err := s.dev.Tx(w, nil); err != nil {
			return fmt.Errorf("amg88xx write register 0x%02X: %w", w[0], err)
		}
	}

	if s.settle <= 0 {
		return nil
	}
	timer := time.NewTimer(s.settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Pixel returns the temperature of pixel i in degrees Celsius. Pixels are
// numbered row by row.
func (s *Sensor) Pixel(i int) (float64, error) {
	if i < 0 || i >= Pixels {
		return 0, fmt.Errorf("%w: %d", ErrPixelOutOfRange, i)
	}

	raw, err := s.readWord(byte(regPixelBase + 2*i))
	if err != nil {
		return 0, fmt.Errorf("amg88xx pixel %d: %w", i, err)
	}
	return float64(signExtend12(raw)) * pixelResolution, nil
}

// Thermistor returns the on-chip thermistor temperature in degrees Celsius
func (s *Sensor) Thermistor() (float64, error) {
	raw, err := s.readWord(regThermistor)
	if err != nil {
		return 0, fmt.Errorf("amg88xx thermistor: %w", err)
	}

	// 12-bit sign and magnitude
	value := float64(raw & 0x07FF)
	if raw&0x0800 != 0 {
		value = -value
	}
	return value * thermistorResolution, nil
}

// Close releases the bus if Open created it
func (s *Sensor) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("failed to close I2C bus: %w", err)
	}
	return nil
}

// readWord reads a little-endian register pair
func (s *Sensor) readWord(reg byte) (uint16, error) {
	var buf [2]byte
	if err := s.dev.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}

// signExtend12 converts a 12-bit two's complement value
func signExtend12(raw uint16) int16 {
	return int16(raw<<4) >> 4
}

var (
	_ nfcbridge.ThermalSensor = (*Sensor)(nil)
	_ nfcbridge.Initializer   = (*Sensor)(nil)
)
