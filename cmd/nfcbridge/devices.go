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

package main

import (
	"context"
	"time"

	"github.com/ZaparooProject/go-nfcbridge/internal/metrics"
	"github.com/ZaparooProject/go-nfcbridge/link"
)

type tagReader interface {
	ReadTargetID(ctx context.Context, timeout time.Duration) ([]byte, bool, error)
	Init(ctx context.Context) error
	Close() error
}

type thermalSensor interface {
	Pixel(i int) (float64, error)
	Init(ctx context.Context) error
	Close() error
}

// unavailable stands in for a sensor that could not be opened. Its Init
// fails, which halts the loop with the not-found diagnostic.
type unavailable struct {
	err error
}

func (u unavailable) Init(context.Context) error { return u.err }

func (u unavailable) ReadTargetID(context.Context, time.Duration) ([]byte, bool, error) {
	return nil, false, u.err
}

func (u unavailable) Pixel(int) (float64, error) { return 0, u.err }

func (unavailable) Close() error { return nil }

// meteredLink publishes the link's dropped byte count from the loop goroutine
type meteredLink struct {
	*link.Port
	metrics *metrics.BridgeMetrics
}

func (m *meteredLink) Buffered() int {
	n := m.Port.Buffered()
	m.metrics.SetLinkDropped(m.Port.Dropped())
	return n
}
