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

// State is the lifecycle of a Loop
type State int

const (
	// StateRunning loops process iterations normally
	StateRunning State = iota
	// StateHalted loops were stopped by a fatal startup failure and never
	// touch the link or the sensors again
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// ReportState tracks what the loop is doing within one iteration
type ReportState int

const (
	StateIdle ReportState = iota
	StateReporting
)

func (s ReportState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReporting:
		return "reporting"
	default:
		return "unknown"
	}
}

// Stats counts what the loop has done since it was created
type Stats struct {
	Iterations     int64
	FramesReceived int64
	FramesRejected int64
	FramesSent     int64
	TagsDetected   int64
	PollErrors     int64
}
