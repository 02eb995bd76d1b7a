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

/*
Package nfcbridge connects an NFC reader (and optionally an 8x8 thermal sensor)
to a host computer over a compact framed serial protocol.

The bridge runs a single cooperative loop: each iteration first services at
most one inbound command frame from the host, then polls the NFC reader with
a bounded timeout and reports any detected tag identifier as an outgoing
frame. Nothing runs concurrently with the loop body, so the serial link and
the sensors need no locking.

Wire format:

	+--------+---------+--------+-----------------+----------+--------+
	| 0xA5   | command | length | payload[length] | checksum | 0x5A   |
	+--------+---------+--------+-----------------+----------+--------+

The checksum is the XOR of the header, command, length and every payload
byte. Frames that fail validation are dropped without a reply; the link has
no negative acknowledgement.

Commands:
  - 0x01 identifier report (device to host), payload is the raw tag UID
  - 0x10 thermal data request (host to device), empty payload
  - 0x11 thermal data report (device to host), 64 big-endian int16 values in
    hundredths of a degree Celsius

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-nfcbridge/bridge"
	    "github.com/ZaparooProject/go-nfcbridge/link"
	    "github.com/ZaparooProject/go-nfcbridge/pn532"
	    "github.com/ZaparooProject/go-nfcbridge/pn532/uart"
	)

	host, err := link.Open(link.DefaultConfig("/dev/ttyGS0"))
	if err != nil {
	    log.Fatal(err)
	}
	defer host.Close()

	transport, err := uart.New("/dev/ttyUSB0")
	if err != nil {
	    log.Fatal(err)
	}
	device, err := pn532.New(transport)
	if err != nil {
	    log.Fatal(err)
	}

	loop, err := bridge.New(host, device)
	if err != nil {
	    log.Fatal(err)
	}
	if err := loop.Start(ctx); err != nil {
	    // The reader was not found. The loop is halted and stays silent.
	    log.Fatal(err)
	}
	_ = loop.Run(ctx)

Error Handling:

Startup failures of a sensor are fatal and put the loop into a halted state:

	if errors.Is(err, nfcbridge.ErrSensorNotFound) {
	    // Handle missing reader
	}

Runtime failures (corrupt frames, unknown commands, poll misses, sensor
errors) are absorbed by the loop and only show up in logs and metrics.
*/
package nfcbridge
