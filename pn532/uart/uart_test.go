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

package uart

import (
	"bytes"
	"context"
	"testing"
	"time"

	nfcbridge "github.com/ZaparooProject/go-nfcbridge"
	"github.com/ZaparooProject/go-nfcbridge/internal/frame"
	testutil "github.com/ZaparooProject/go-nfcbridge/internal/testing"
	"github.com/ZaparooProject/go-nfcbridge/pn532"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort plays the PN532 side of the line. respond is called for every
// write and its result becomes readable.
type fakePort struct {
	respond func(written []byte) []byte
	rx      []byte
	writes  [][]byte
	closed  bool
}

func (f *fakePort) Read(p []byte) (int, error) {
	if len(f.rx) == 0 {
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	n := copy(p, f.rx)
	f.rx = f.rx[n:]
	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.writes = append(f.writes, append([]byte(nil), p...))
	if f.respond != nil {
		f.rx = append(f.rx, f.respond(p)...)
	}
	return len(p), nil
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

func (*fakePort) SetReadTimeout(time.Duration) error { return nil }
func (*fakePort) ResetInputBuffer() error            { return nil }

func isCommand(written []byte, cmd byte) bool {
	return len(written) > 6 && written[5] == frame.HostToPn532 && written[6] == cmd
}

func newTestTransport(t *testing.T, port *fakePort) *Transport {
	t.Helper()
	tr, err := newTransport(port, "/dev/ttyUSB0")
	require.NoError(t, err)
	return tr
}

// TestTransportCreation verifies basic transport creation and properties
func TestTransportCreation(t *testing.T) {
	t.Parallel()

	transport := &Transport{portName: "/dev/ttyUSB0"}
	assert.Equal(t, "/dev/ttyUSB0", transport.portName)
	assert.Equal(t, pn532.TransportUART, transport.Type())
	assert.False(t, transport.IsConnected())

	_, err := transport.SendCommand(context.Background(), 0x02, nil)
	require.ErrorIs(t, err, nfcbridge.ErrTransportClosed)
}

func TestSendCommand_FirmwareVersion(t *testing.T) {
	t.Parallel()

	port := &fakePort{respond: func(written []byte) []byte {
		if isCommand(written, testutil.CmdGetFirmwareVersion) {
			resp := append([]byte{0xAA}, frame.AckFrame...) // line noise first
			return append(resp, testutil.BuildResponseFrame(testutil.BuildFirmwareVersionResponse())...)
		}
		return nil
	}}
	transport := newTestTransport(t, port)

	data, err := transport.SendCommand(context.Background(), testutil.CmdGetFirmwareVersion, nil)
	require.NoError(t, err)
	assert.Equal(t, testutil.BuildFirmwareVersionResponse(), data)

	require.Len(t, port.writes, 2)
	assert.Equal(t, wakeSequence, port.writes[0])
	assert.Equal(t, []byte{0x00, 0x00, 0xFF, 0x02, 0xFE, 0xD4, 0x02, 0x2A, 0x00}, port.writes[1])

	// The wake sequence is only sent once
	port.writes = nil
	_, err = transport.SendCommand(context.Background(), testutil.CmdGetFirmwareVersion, nil)
	require.NoError(t, err)
	assert.Len(t, port.writes, 1)
}

func TestSendCommand_NacksBadChecksum(t *testing.T) {
	t.Parallel()

	good := testutil.BuildResponseFrame(testutil.BuildSAMConfigurationResponse())
	bad := bytes.Clone(good)
	bad[len(bad)-2] ^= 0xFF

	port := &fakePort{respond: func(written []byte) []byte {
		switch {
		case isCommand(written, testutil.CmdSAMConfiguration):
			return append(bytes.Clone(frame.AckFrame), bad...)
		case bytes.Equal(written, frame.NackFrame):
			return good
		}
		return nil
	}}
	transport := newTestTransport(t, port)

	data, err := transport.SendCommand(context.Background(), testutil.CmdSAMConfiguration, []byte{0x01, 0x14, 0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x15}, data)
	assert.Equal(t, frame.NackFrame, port.writes[len(port.writes)-1])
}

func TestSendCommand_NoAck(t *testing.T) {
	t.Parallel()

	transport := newTestTransport(t, &fakePort{})
	transport.ackTimeout = 20 * time.Millisecond

	_, err := transport.SendCommand(context.Background(), testutil.CmdGetFirmwareVersion, nil)
	require.ErrorIs(t, err, pn532.ErrNoACK)
	assert.True(t, nfcbridge.IsRetryable(err))
}

func TestSendCommand_Nack(t *testing.T) {
	t.Parallel()

	port := &fakePort{respond: func([]byte) []byte { return bytes.Clone(frame.NackFrame) }}
	transport := newTestTransport(t, port)

	_, err := transport.SendCommand(context.Background(), testutil.CmdGetFirmwareVersion, nil)
	require.ErrorIs(t, err, pn532.ErrNoACK)
}

// TestSendCommand_TimeoutAborts checks that a poll with no target in the
// field ends at the context deadline and cancels the command
func TestSendCommand_TimeoutAborts(t *testing.T) {
	t.Parallel()

	port := &fakePort{respond: func(written []byte) []byte {
		if isCommand(written, testutil.CmdInListPassiveTarget) {
			return bytes.Clone(frame.AckFrame)
		}
		return nil
	}}
	transport := newTestTransport(t, port)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := transport.SendCommand(ctx, testutil.CmdInListPassiveTarget, []byte{0x01, 0x00})
	elapsed := time.Since(start)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
	assert.Equal(t, frame.AckFrame, port.writes[len(port.writes)-1])
}

// TestSendCommand_CancelledContext verifies cancellation is checked before
// anything touches the port
func TestSendCommand_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	port := &fakePort{}
	transport := newTestTransport(t, port)

	start := time.Now()
	_, err := transport.SendCommand(ctx, testutil.CmdGetFirmwareVersion, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
	assert.Empty(t, port.writes)
}

func TestSendCommand_DataTooLarge(t *testing.T) {
	t.Parallel()

	transport := newTestTransport(t, &fakePort{})
	_, err := transport.SendCommand(context.Background(), 0x40, make([]byte, 300))
	require.ErrorIs(t, err, pn532.ErrDataTooLarge)
	assert.False(t, nfcbridge.IsRetryable(err))
}

func TestDeviceOverUART(t *testing.T) {
	t.Parallel()

	port := &fakePort{respond: func(written []byte) []byte {
		var resp []byte
		switch {
		case isCommand(written, testutil.CmdGetFirmwareVersion):
			resp = testutil.BuildFirmwareVersionResponse()
		case isCommand(written, testutil.CmdSAMConfiguration):
			resp = testutil.BuildSAMConfigurationResponse()
		case isCommand(written, 0x32):
			resp = []byte{0x33}
		case isCommand(written, testutil.CmdInListPassiveTarget):
			resp = testutil.BuildTagDetectionResponse(testutil.TestNTAG213UID)
		default:
			return nil
		}
		return append(bytes.Clone(frame.AckFrame), testutil.BuildResponseFrame(resp)...)
	}}
	transport := newTestTransport(t, port)

	device, err := pn532.New(transport)
	require.NoError(t, err)
	require.NoError(t, device.Init(context.Background()))

	uid, ok, err := device.ReadTargetID(context.Background(), 500*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, testutil.TestNTAG213UID, uid)

	require.NoError(t, device.Close())
	assert.True(t, port.closed)
	assert.False(t, transport.IsConnected())
}

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()

	transport := newTestTransport(t, &fakePort{})
	require.NoError(t, transport.Close())
	require.NoError(t, transport.Close())

	_, err := transport.SendCommand(context.Background(), 0x02, nil)
	require.ErrorIs(t, err, nfcbridge.ErrTransportClosed)
}
