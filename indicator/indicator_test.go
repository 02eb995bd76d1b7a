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

package indicator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestGPIO_Set(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		activeLow bool
		active    bool
		want      gpio.Level
	}{
		{name: "active high on", activeLow: false, active: true, want: gpio.High},
		{name: "active high off", activeLow: false, active: false, want: gpio.Low},
		{name: "active low on", activeLow: true, active: true, want: gpio.Low},
		{name: "active low off", activeLow: true, active: false, want: gpio.High},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pin := &gpiotest.Pin{N: "GPIO17", L: !tt.want}
			ind := New(pin, tt.activeLow)

			require.NoError(t, ind.Set(tt.active))
			assert.Equal(t, tt.want, pin.Read())
			assert.Equal(t, tt.active, ind.Active())
		})
	}
}

type failingPin struct {
	gpiotest.Pin
}

func (*failingPin) Out(gpio.Level) error {
	return errors.New("pin busy")
}

func TestGPIO_SetError(t *testing.T) {
	t.Parallel()

	ind := New(&failingPin{Pin: gpiotest.Pin{N: "GPIO4"}}, false)
	require.Error(t, ind.Set(true))
	assert.False(t, ind.Active())
}

func TestNop(t *testing.T) {
	t.Parallel()

	require.NoError(t, Nop{}.Set(true))
	require.NoError(t, Nop{}.Set(false))
}
