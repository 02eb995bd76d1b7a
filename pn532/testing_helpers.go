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
	"sync"
)

// MockTransport is a scripted transport for tests. Responses are registered
// per command code; queued responses are returned first, then the fixed one.
// A command registered as blocking waits until its context is done, the way
// InListPassiveTarget does with no target in the field.
type MockTransport struct {
	responses map[byte][]byte
	queued    map[byte][][]byte
	errors    map[byte]error
	blocking  map[byte]bool
	calls     []MockCall
	mu        sync.Mutex
	closed    bool
}

// MockCall records one SendCommand
type MockCall struct {
	Args []byte
	Cmd  byte
}

// NewMockTransport creates an empty mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses: make(map[byte][]byte),
		queued:    make(map[byte][][]byte),
		errors:    make(map[byte]error),
		blocking:  make(map[byte]bool),
	}
}

// SetResponse sets the response returned for cmd
func (m *MockTransport) SetResponse(cmd byte, response []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[cmd] = response
	delete(m.errors, cmd)
}

// QueueResponse adds a one-shot response for cmd
func (m *MockTransport) QueueResponse(cmd byte, response []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued[cmd] = append(m.queued[cmd], response)
}

// SetError makes cmd fail with err
func (m *MockTransport) SetError(cmd byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[cmd] = err
}

// SetBlocking makes cmd wait for its context once the queue is empty
func (m *MockTransport) SetBlocking(cmd byte, block bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocking[cmd] = block
}

// SendCommand implements Transport
func (m *MockTransport) SendCommand(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Cmd: cmd, Args: append([]byte(nil), args...)})
	if m.closed {
		m.mu.Unlock()
		return nil, errors.New("mock transport closed")
	}
	if err, ok := m.errors[cmd]; ok {
		m.mu.Unlock()
		return nil, err
	}
	if queue := m.queued[cmd]; len(queue) > 0 {
		m.queued[cmd] = queue[1:]
		m.mu.Unlock()
		return append([]byte(nil), queue[0]...), nil
	}
	block := m.blocking[cmd]
	response, ok := m.responses[cmd]
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if !ok {
		return nil, fmt.Errorf("%w: no mock response for command 0x%02X", ErrUnexpectedResponse, cmd)
	}
	return append([]byte(nil), response...), nil
}

// Calls returns the commands sent so far
func (m *MockTransport) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns how many times cmd was sent
func (m *MockTransport) CallCount(cmd byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Cmd == cmd {
			count++
		}
	}
	return count
}

// Close marks the transport closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

var _ Transport = (*MockTransport)(nil)
