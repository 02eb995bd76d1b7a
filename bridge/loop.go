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

// Package bridge implements the poll-and-report loop that connects the NFC
// and thermal sensors to the host link.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	nfcbridge "github.com/ZaparooProject/go-nfcbridge"
	"github.com/ZaparooProject/go-nfcbridge/protocol"
	"github.com/rs/zerolog"
)

// Text lines written to the link outside of frames during startup
const (
	DiagnosticNotFound = "Error: NFC reader not found!\r\n"
	ReadyBanner        = "NFC reader is ready.\r\n"
)

// Loop is the single-threaded poll-and-report loop.
//
// Each iteration services at most one inbound command frame and then polls
// the NFC reader once. A Loop owns its link and sensors for its whole
// lifetime and is NOT safe for concurrent use.
type Loop struct {
	link      nfcbridge.Transport
	tags      nfcbridge.TagReader
	thermal   nfcbridge.ThermalSensor
	indicator nfcbridge.Indicator
	metrics   Recorder
	commands  map[byte]Handler
	sleep     func(time.Duration)
	config    *Config
	log       zerolog.Logger
	stats     Stats
	state     State
	report    ReportState
}

// New creates a loop reading inbound frames from link and polling tags
func New(link nfcbridge.Transport, tags nfcbridge.TagReader, opts ...Option) (*Loop, error) {
	if link == nil {
		return nil, errors.New("link cannot be nil")
	}
	if tags == nil {
		return nil, errors.New("tag reader cannot be nil")
	}

	l := &Loop{
		link:     link,
		tags:     tags,
		metrics:  nopRecorder{},
		commands: make(map[byte]Handler),
		sleep:    time.Sleep,
		config:   DefaultConfig(),
		log:      zerolog.Nop(),
		state:    StateRunning,
		report:   StateIdle,
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	l.registerCommands()
	return l, nil
}

// Start probes the sensors. A sensor that fails to initialise halts the
// loop for good: a single diagnostic line goes to the host and nothing is
// ever written afterwards. On success the ready banner is written.
func (l *Loop) Start(ctx context.Context) error {
	if l.state == StateHalted {
		return nfcbridge.ErrHalted
	}

	l.setIndicator(false)
	if err := initialize(ctx, l.tags); err != nil {
		return l.halt(fmt.Errorf("%w: nfc reader: %w", nfcbridge.ErrSensorNotFound, err))
	}
	if l.thermal != nil {
		if err := initialize(ctx, l.thermal); err != nil {
			return l.halt(fmt.Errorf("%w: thermal sensor: %w", nfcbridge.ErrSensorNotFound, err))
		}
	}

	l.writeLine(ReadyBanner)
	l.log.Info().
		Bool("thermal", l.thermal != nil).
		Dur("poll_timeout", l.config.PollTimeout).
		Msg("bridge ready")
	return nil
}

// Run steps the loop until ctx is done or the loop is halted. The context is
// only checked between iterations; a poll, command or dwell in progress
// always runs to completion even when ctx is cancelled mid-way.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.Step(ctx); err != nil {
			return err
		}
	}
}

// Step runs exactly one iteration: command check, then sensor poll.
// Runtime failures are absorbed; the only error is ErrHalted. Cancellation
// of ctx does not cut the iteration short, only its values are passed on.
func (l *Loop) Step(ctx context.Context) error {
	if l.state == StateHalted {
		return nfcbridge.ErrHalted
	}

	iterCtx := context.WithoutCancel(ctx)
	l.stats.Iterations++
	l.serviceCommand(iterCtx)
	l.pollTag(iterCtx)
	return nil
}

// State returns the lifecycle state
func (l *Loop) State() State {
	return l.state
}

// ReportState returns the per-iteration state
func (l *Loop) ReportState() ReportState {
	return l.report
}

// Stats returns a snapshot of the loop counters
func (l *Loop) Stats() Stats {
	return l.stats
}

// Config returns the loop timings
func (l *Loop) Config() Config {
	return *l.config
}

// halt is shared by both sensors; hosts only recognise the one diagnostic line.
func (l *Loop) halt(err error) error {
	l.state = StateHalted
	l.writeLine(DiagnosticNotFound)
	l.log.Error().Err(err).Msg("sensor initialization failed, bridge halted")
	return err
}

// serviceCommand decodes and dispatches one inbound frame if enough bytes
// are waiting. Bad frames and unknown commands are dropped silently.
func (l *Loop) serviceCommand(ctx context.Context) {
	if l.link.Buffered() < protocol.MinFrameSize {
		return
	}

	frame, ok := protocol.TryDecode(l.link)
	if !ok {
		l.stats.FramesRejected++
		l.metrics.FrameRejected()
		l.log.Debug().Msg("discarded invalid inbound frame")
		return
	}
	l.stats.FramesReceived++

	handler, found := l.commands[frame.Command]
	if !found {
		l.log.Debug().Hex("command", []byte{frame.Command}).Msg("ignoring unknown command")
		return
	}

	l.metrics.CommandDispatched(frame.Command)
	if err := handler(ctx, frame.Payload); err != nil {
		l.log.Warn().Err(err).
			Str("command", protocol.CommandName(frame.Command)).
			Msg("command failed")
	}
}

// pollTag queries the NFC reader once and reports a detected identifier
func (l *Loop) pollTag(ctx context.Context) {
	uid, ok, err := l.tags.ReadTargetID(ctx, l.config.PollTimeout)
	if err != nil {
		l.stats.PollErrors++
		l.metrics.PollCompleted(PollError)
		l.log.Debug().Err(err).Msg("tag poll failed")
		return
	}
	if !ok || len(uid) == 0 {
		l.metrics.PollCompleted(PollMiss)
		return
	}

	l.stats.TagsDetected++
	l.metrics.PollCompleted(PollHit)
	l.log.Info().Hex("uid", uid).Msg("tag detected")

	l.report = StateReporting
	l.setIndicator(true)
	if err := l.send(protocol.CmdIdentifier, uid); err != nil {
		l.log.Warn().Err(err).Msg("failed to report tag")
	}
	l.sleep(l.config.Dwell)
	l.setIndicator(false)
	l.report = StateIdle
}

func (l *Loop) send(command byte, payload []byte) error {
	frame, err := protocol.Encode(command, payload)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", protocol.CommandName(command), err)
	}

	n, err := l.link.Write(frame)
	if err != nil {
		return fmt.Errorf("write %s frame: %w", protocol.CommandName(command), err)
	}
	if n < len(frame) {
		return fmt.Errorf("write %s frame: %w", protocol.CommandName(command), io.ErrShortWrite)
	}

	l.stats.FramesSent++
	l.metrics.FrameSent(command)
	return nil
}

func (l *Loop) writeLine(line string) {
	if _, err := l.link.Write([]byte(line)); err != nil {
		l.log.Debug().Err(err).Msg("failed to write status line")
	}
}

func (l *Loop) setIndicator(active bool) {
	if l.indicator == nil {
		return
	}
	if err := l.indicator.Set(active); err != nil {
		l.log.Debug().Err(err).Bool("active", active).Msg("failed to drive indicator")
	}
}

func initialize(ctx context.Context, collaborator any) error {
	if initializer, ok := collaborator.(nfcbridge.Initializer); ok {
		if err := initializer.Init(ctx); err != nil {
			return fmt.Errorf("init failed: %w", err)
		}
	}
	return nil
}
