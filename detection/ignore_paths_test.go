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
	"go.bug.st/serial/enumerator"
)

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		devicePath  string
		ignorePaths []string
		expected    bool
	}{
		{name: "nil ignore list", devicePath: "/dev/ttyACM0"},
		{name: "empty device path", ignorePaths: []string{"/dev/ttyACM0"}},
		{name: "exact unix path", devicePath: "/dev/ttyACM0", ignorePaths: []string{"/dev/ttyACM0"}, expected: true},
		{name: "windows port any case", devicePath: "com3", ignorePaths: []string{"COM3"}, expected: true},
		{name: "unix path any case", devicePath: "/dev/ttyACM0", ignorePaths: []string{"/DEV/TTYACM0"}, expected: true},
		{name: "trailing slash", devicePath: "/dev/ttyS0/", ignorePaths: []string{"/dev/ttyS0"}, expected: true},
		{name: "dot segments", devicePath: "/dev/./serial/../ttyAMA0", ignorePaths: []string{"/dev/ttyAMA0"}, expected: true},
		{name: "different port", devicePath: "/dev/ttyACM1", ignorePaths: []string{"/dev/ttyACM0"}},
		{name: "blank entries skipped", devicePath: "/dev/serial0", ignorePaths: []string{"", "/dev/serial0"}, expected: true},
		{name: "blank entry does not match", devicePath: ".", ignorePaths: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsPathIgnored(tt.devicePath, tt.ignorePaths))
		})
	}
}

// The PN532's own UART is passed as an ignore path by the daemon so it is
// never mistaken for the host link
func TestFilterPorts_IgnoresReaderUART(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.Nil(t, opts.IgnorePaths)

	opts.IgnorePaths = []string{"/dev/ttyUSB0"}
	ports := filterPorts([]*enumerator.PortDetails{
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1a86", PID: "7523"},
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043"},
	}, opts)

	if assert.Len(t, ports, 1) {
		assert.Equal(t, "/dev/ttyACM0", ports[0].Path)
	}
}
