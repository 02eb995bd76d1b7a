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
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ZaparooProject/go-nfcbridge/detection"
	"github.com/ZaparooProject/go-nfcbridge/link"
	"github.com/ZaparooProject/go-nfcbridge/protocol"
	"github.com/rs/zerolog"
)

type config struct {
	portName        *string
	baud            *int
	thermalInterval *time.Duration
	debug           *bool
}

func parseFlags() *config {
	cfg := &config{
		portName: flag.String("port", "",
			"Serial port of the bridge (e.g., /dev/ttyACM0 or COM3). Leave empty for auto-detection."),
		baud: flag.Int("baud", link.DefaultBaudRate, "Baud rate"),
		thermalInterval: flag.Duration("thermal-interval", 0,
			"Request a thermal frame at this interval (0 disables)"),
		debug: flag.Bool("debug", false, "Enable debug output"),
	}
	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()

	level := zerolog.InfoLevel
	if *cfg.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("bridgemon failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config, logger zerolog.Logger) error {
	name := *cfg.portName
	if name == "" {
		found, err := detection.FindPort(detection.DefaultOptions())
		if err != nil {
			return fmt.Errorf("no bridge found: %w", err)
		}
		logger.Info().Str("port", found.String()).Msg("detected bridge")
		name = found.Path
	}

	lc := link.DefaultConfig(name)
	lc.BaudRate = *cfg.baud
	port, err := link.Open(lc)
	if err != nil {
		return err
	}
	defer func() { _ = port.Close() }()

	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if *cfg.thermalInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			requestThermal(ctx, port, *cfg.thermalInterval, logger)
		}()
	}

	logger.Info().Str("port", name).Msg("monitoring bridge")
	reader := protocol.NewReader(&pollingReader{ctx: ctx, port: port})
	err = monitor(reader, os.Stdout)
	logger.Debug().Int("discarded", reader.Discarded()).Msg("monitor stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// requestThermal sends a thermal request frame on every tick
func requestThermal(ctx context.Context, w io.Writer, interval time.Duration, logger zerolog.Logger) {
	req, err := protocol.Encode(protocol.CmdThermalRequest, nil)
	if err != nil {
		logger.Error().Err(err).Msg("encode thermal request")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Write(req); err != nil {
				logger.Warn().Err(err).Msg("thermal request failed")
			}
		}
	}
}

// pollingReader turns the link's non-blocking reads into an io.Reader that
// gives up once ctx is done
type pollingReader struct {
	ctx  context.Context
	port *link.Port
}

func (r *pollingReader) Read(buf []byte) (int, error) {
	for {
		if err := r.ctx.Err(); err != nil {
			return 0, err
		}
		if r.port.Buffered() > 0 {
			return r.port.Read(buf)
		}
	}
}

type frameReader interface {
	ReadFrame() (protocol.Frame, error)
}

// monitor prints every frame until the stream ends
func monitor(r frameReader, out io.Writer) error {
	for {
		f, err := r.ReadFrame()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := io.WriteString(out, formatFrame(f)); err != nil {
			return err
		}
	}
}

func formatFrame(f protocol.Frame) string {
	var sb strings.Builder
	switch f.Command {
	case protocol.CmdIdentifier:
		_, _ = fmt.Fprintf(&sb, "UID: % X\n", f.Payload)
	case protocol.CmdThermalReport:
		pixels, err := protocol.DecodeThermal(f.Payload)
		if err != nil {
			_, _ = fmt.Fprintf(&sb, "thermal: %v\n", err)
			break
		}
		sb.WriteString("Thermal (°C):\n")
		for row := range 8 {
			for col := range 8 {
				_, _ = fmt.Fprintf(&sb, "%7.2f", pixels[row*8+col])
			}
			sb.WriteByte('\n')
		}
	default:
		_, _ = fmt.Fprintf(&sb, "%s (0x%02X): % X\n",
			protocol.CommandName(f.Command), f.Command, f.Payload)
	}
	return sb.String()
}
