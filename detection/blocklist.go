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
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// DefaultBlocklist returns VID:PID pairs of debug probes whose CDC ports are
// never the bridge board
func DefaultBlocklist() []string {
	return []string{
		"1366:0105", // SEGGER J-Link CDC
		"0D28:0204", // ARM DAPLink CMSIS-DAP
	}
}

// IsBlocked reports whether vidpid is on the blocklist, ignoring case
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.TrimSpace(vidpid)
	if vidpid == "" {
		return false
	}
	return slices.ContainsFunc(blocklist, func(entry string) bool {
		return strings.EqualFold(vidpid, strings.TrimSpace(entry))
	})
}

// FormatVIDPID joins enumerator IDs into "VVVV:PPPP", or "" when either is
// missing or not hex
func FormatVIDPID(vid, pid string) string {
	vid, pid = strings.TrimSpace(vid), strings.TrimSpace(pid)
	if !isHex16(vid) || !isHex16(pid) {
		return ""
	}
	return strings.ToUpper(vid + ":" + pid)
}

func isHex16(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 16, 16)
	return err == nil
}

// IsPathIgnored reports whether devicePath matches an entry of ignorePaths.
// Both sides are cleaned and compared case-insensitively, so "COM2" matches
// "com2" and "/dev/ttyS0/" matches "/dev/ttyS0".
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}
	device := normalizedPath(devicePath)
	return slices.ContainsFunc(ignorePaths, func(p string) bool {
		return p != "" && normalizedPath(p) == device
	})
}

func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
