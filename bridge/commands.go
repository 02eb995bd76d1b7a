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
	"context"
	"fmt"

	"github.com/ZaparooProject/go-nfcbridge/protocol"
)

// Handler services one inbound command. Errors are logged by the loop and
// never reported to the host.
type Handler func(ctx context.Context, payload []byte) error

// registerCommands fills the command table. Without a thermal sensor the
// table stays empty and every inbound frame is ignored.
func (l *Loop) registerCommands() {
	if l.thermal != nil {
		l.commands[protocol.CmdThermalRequest] = l.handleThermalRequest
	}
}

// Commands returns the codes the loop dispatches
func (l *Loop) Commands() []byte {
	codes := make([]byte, 0, len(l.commands))
	for code := range l.commands {
		codes = append(codes, code)
	}
	return codes
}

// handleThermalRequest reads the full grid synchronously and reports it.
// Requests carrying a payload are not thermal requests and are ignored.
func (l *Loop) handleThermalRequest(_ context.Context, payload []byte) error {
	if len(payload) != 0 {
		l.log.Debug().Int("length", len(payload)).Msg("ignoring thermal request with payload")
		return nil
	}

	var pixels [protocol.ThermalPixels]float64
	for i := range pixels {
		celsius, err := l.thermal.Pixel(i)
		if err != nil {
			return fmt.Errorf("read pixel %d: %w", i, err)
		}
		pixels[i] = celsius
	}

	return l.send(protocol.CmdThermalReport, protocol.EncodeThermal(pixels))
}
