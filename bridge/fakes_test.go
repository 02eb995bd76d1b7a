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
	"bytes"
	"context"
	"errors"
	"io"
	"time"
)

// fakeLink is an in-memory host link. Inbound bytes are queued with feed and
// everything the loop writes lands in out.
type fakeLink struct {
	in       []byte
	out      bytes.Buffer
	writeErr error
}

func (f *fakeLink) feed(data ...byte) {
	f.in = append(f.in, data...)
}

func (f *fakeLink) Buffered() int {
	return len(f.in)
}

func (f *fakeLink) ReadByte() (byte, error) {
	if len(f.in) == 0 {
		return 0, io.EOF
	}
	b := f.in[0]
	f.in = f.in[1:]
	return b, nil
}

func (f *fakeLink) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.out.Write(p)
}

// scriptedReader returns queued poll results in order, then misses forever.
// With waitTimeout set each poll first blocks for the timeout it is given,
// or fails early once ctx is done, the way a real reader honours ctx.
type scriptedReader struct {
	initErr     error
	results     []pollResult
	polls       int
	inits       int
	timeouts    []time.Duration
	events      *[]string
	waitTimeout bool
}

type pollResult struct {
	err error
	uid []byte
}

func (r *scriptedReader) Init(context.Context) error {
	r.inits++
	return r.initErr
}

func (r *scriptedReader) ReadTargetID(ctx context.Context, timeout time.Duration) ([]byte, bool, error) {
	r.polls++
	r.timeouts = append(r.timeouts, timeout)
	if r.events != nil {
		*r.events = append(*r.events, "poll")
	}
	if r.waitTimeout {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(timeout):
		}
	}
	if len(r.results) == 0 {
		return nil, false, nil
	}
	next := r.results[0]
	r.results = r.results[1:]
	if next.err != nil {
		return nil, false, next.err
	}
	return next.uid, next.uid != nil, nil
}

// gridSensor reports pixel values from a fixed grid
type gridSensor struct {
	initErr error
	failAt  int
	pixels  [64]float64
	reads   int
	events  *[]string
}

func (s *gridSensor) Init(context.Context) error {
	return s.initErr
}

func (s *gridSensor) Pixel(i int) (float64, error) {
	if s.reads == 0 && s.events != nil {
		*s.events = append(*s.events, "thermal")
	}
	s.reads++
	if s.failAt > 0 && i == s.failAt {
		return 0, errors.New("bus error")
	}
	return s.pixels[i], nil
}

type recordingIndicator struct {
	levels []bool
}

func (r *recordingIndicator) Set(active bool) error {
	r.levels = append(r.levels, active)
	return nil
}

type countingRecorder struct {
	sent       map[byte]int
	dispatched map[byte]int
	polls      map[PollResult]int
	rejected   int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		sent:       make(map[byte]int),
		dispatched: make(map[byte]int),
		polls:      make(map[PollResult]int),
	}
}

func (c *countingRecorder) FrameSent(command byte)         { c.sent[command]++ }
func (c *countingRecorder) FrameRejected()                 { c.rejected++ }
func (c *countingRecorder) CommandDispatched(command byte) { c.dispatched[command]++ }
func (c *countingRecorder) PollCompleted(result PollResult) {
	c.polls[result]++
}
