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

package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	blocklist := []string{" 1366:0105 ", "abcd:ef01"}
	assert.True(t, IsBlocked("1366:0105", blocklist))
	assert.True(t, IsBlocked("ABCD:EF01", blocklist))
	assert.False(t, IsBlocked("1A86:7523", blocklist))
	assert.False(t, IsBlocked("", blocklist))
	assert.False(t, IsBlocked("1366:0105", nil))
}

func TestFormatVIDPID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1A86:7523", FormatVIDPID("1a86", "7523"))
	assert.Equal(t, "10C4:EA60", FormatVIDPID(" 10c4", "ea60 "))
	assert.Empty(t, FormatVIDPID("", "7523"))
	assert.Empty(t, FormatVIDPID("zz", "7523"))
}

func TestFilterPorts(t *testing.T) {
	t.Parallel()

	details := []*enumerator.PortDetails{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "1366", PID: "0105", Product: "J-Link"},
		{Name: "/dev/ttyUSB3", IsUSB: true, VID: "067b", PID: "2303", Product: "USB-Serial Controller"},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1a86", PID: "7523", SerialNumber: "A1"},
		nil,
		{Name: ""},
	}

	ports := filterPorts(details, DefaultOptions())
	require.Len(t, ports, 3)

	// Known bridge chips sort first, the rest keep enumeration order
	assert.Equal(t, "/dev/ttyUSB0", ports[0].Path)
	assert.Equal(t, "1A86:7523", ports[0].VIDPID)
	assert.Equal(t, "CH340", ports[0].Name)
	assert.Equal(t, "A1", ports[0].Serial)
	assert.True(t, ports[0].Known())
	assert.Equal(t, "/dev/ttyS0", ports[1].Path)
	assert.Equal(t, "/dev/ttyUSB3", ports[2].Path)
	assert.Equal(t, "USB-Serial Controller", ports[2].Name)
	assert.False(t, ports[2].Known())
}

func TestFilterPorts_USBOnly(t *testing.T) {
	t.Parallel()

	details := []*enumerator.PortDetails{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "10c4", PID: "ea60"},
	}

	ports := filterPorts(details, Options{USBOnly: true})
	require.Len(t, ports, 1)
	assert.Equal(t, "/dev/ttyUSB0", ports[0].Path)
}

func TestPortInfoString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/dev/ttyS0", PortInfo{Path: "/dev/ttyS0"}.String())
	assert.Equal(t, "COM3 (1A86:7523 CH340)", PortInfo{Path: "COM3", VIDPID: "1A86:7523", Name: "CH340"}.String())
	assert.Equal(t, "COM4 (1234:5678)", PortInfo{Path: "COM4", VIDPID: "1234:5678"}.String())
}

func TestRegisteredI2CBuses(t *testing.T) {
	t.Parallel()

	err := i2creg.Register("nfcbridge-test-bus", nil, -1, func() (i2c.BusCloser, error) {
		return &i2ctest.Playback{}, nil
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = i2creg.Unregister("nfcbridge-test-bus") })

	assert.Contains(t, registeredI2CBuses(), "nfcbridge-test-bus")
}
