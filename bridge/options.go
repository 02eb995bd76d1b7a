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

package bridge

import (
	"errors"
	"fmt"
	"time"

	nfcbridge "github.com/ZaparooProject/go-nfcbridge"
	"github.com/rs/zerolog"
)

// Config holds the loop timings
type Config struct {
	// PollTimeout bounds each NFC poll
	PollTimeout time.Duration
	// Dwell is how long the indicator stays active after a report
	Dwell time.Duration
}

// DefaultConfig returns the timings of the reference firmware
func DefaultConfig() *Config {
	return &Config{
		PollTimeout: 500 * time.Millisecond,
		Dwell:       1 * time.Second,
	}
}

// Option is a functional option for configuring a Loop
type Option func(*Loop) error

// WithThermalSensor enables the thermal request command
func WithThermalSensor(sensor nfcbridge.ThermalSensor) Option {
	return func(l *Loop) error {
		if sensor == nil {
			return errors.New("thermal sensor cannot be nil")
		}
		l.thermal = sensor
		return nil
	}
}

// WithIndicator sets the line raised while a detection is reported
func WithIndicator(indicator nfcbridge.Indicator) Option {
	return func(l *Loop) error {
		if indicator == nil {
			return errors.New("indicator cannot be nil")
		}
		l.indicator = indicator
		return nil
	}
}

// WithPollTimeout sets the NFC poll bound
func WithPollTimeout(timeout time.Duration) Option {
	return func(l *Loop) error {
		if timeout <= 0 {
			return fmt.Errorf("poll timeout must be positive, got %s", timeout)
		}
		l.config.PollTimeout = timeout
		return nil
	}
}

// WithDwell sets the post-report dwell time
func WithDwell(dwell time.Duration) Option {
	return func(l *Loop) error {
		if dwell < 0 {
			return fmt.Errorf("dwell must not be negative, got %s", dwell)
		}
		l.config.Dwell = dwell
		return nil
	}
}

// WithLogger sets the logger; the default discards everything
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loop) error {
		l.log = logger.With().Str("component", "bridge").Logger()
		return nil
	}
}

// WithMetrics attaches a metrics recorder
func WithMetrics(recorder Recorder) Option {
	return func(l *Loop) error {
		if recorder == nil {
			return errors.New("metrics recorder cannot be nil")
		}
		l.metrics = recorder
		return nil
	}
}

// WithSleep replaces the function used for the dwell delay
func WithSleep(sleep func(time.Duration)) Option {
	return func(l *Loop) error {
		if sleep == nil {
			return errors.New("sleep function cannot be nil")
		}
		l.sleep = sleep
		return nil
	}
}

// Recorder receives loop events for metrics
type Recorder interface {
	FrameSent(command byte)
	FrameRejected()
	CommandDispatched(command byte)
	PollCompleted(result PollResult)
}

// PollResult is the outcome of one NFC poll
type PollResult string

const (
	PollHit   PollResult = "hit"
	PollMiss  PollResult = "miss"
	PollError PollResult = "error"
)

type nopRecorder struct{}

func (nopRecorder) FrameSent(byte)           {}
func (nopRecorder) FrameRejected()           {}
func (nopRecorder) CommandDispatched(byte)   {}
func (nopRecorder) PollCompleted(PollResult) {}
