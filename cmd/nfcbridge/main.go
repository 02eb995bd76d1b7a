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
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	nfcbridge "github.com/ZaparooProject/go-nfcbridge"
	"github.com/ZaparooProject/go-nfcbridge/bridge"
	"github.com/ZaparooProject/go-nfcbridge/detection"
	"github.com/ZaparooProject/go-nfcbridge/indicator"
	"github.com/ZaparooProject/go-nfcbridge/internal/config"
	"github.com/ZaparooProject/go-nfcbridge/internal/logging"
	"github.com/ZaparooProject/go-nfcbridge/internal/metrics"
	"github.com/ZaparooProject/go-nfcbridge/link"
	"github.com/ZaparooProject/go-nfcbridge/pn532"
	"github.com/ZaparooProject/go-nfcbridge/pn532/i2c"
	"github.com/ZaparooProject/go-nfcbridge/pn532/uart"
	"github.com/ZaparooProject/go-nfcbridge/thermal/amg88xx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type flags struct {
	configPath *string
	debug      *bool
	list       *bool
}

func parseFlags() *flags {
	f := &flags{
		configPath: flag.String("config", "", "Path to the YAML config file (default: ./nfcbridge.yaml or /etc/nfcbridge/nfcbridge.yaml)"),
		debug:      flag.Bool("debug", false, "Enable debug logging"),
		list:       flag.Bool("list", false, "List candidate serial ports and I2C buses, then exit"),
	}
	flag.Parse()
	return f
}

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "nfcbridge: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	f := parseFlags()

	if *f.list {
		return listDevices(os.Stdout)
	}

	cfg, err := config.Load(*f.configPath)
	if err != nil {
		return err
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}

	logger, logCloser, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port, err := openLink(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = port.Close() }()

	opts := []bridge.Option{
		bridge.WithLogger(logger),
		bridge.WithPollTimeout(cfg.NFC.PollTimeout),
		bridge.WithDwell(cfg.NFC.Dwell),
	}
	var hostLink nfcbridge.Transport = port

	if cfg.Metrics.Enable {
		reg := metrics.NewRegistry()
		m := metrics.NewBridgeMetrics(reg)
		opts = append(opts, bridge.WithMetrics(m))
		hostLink = &meteredLink{Port: port, metrics: m}

		srv := serveMetrics(cfg.Metrics, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	tags := openReader(cfg, logger)
	defer func() { _ = tags.Close() }()

	if cfg.Thermal.Enable {
		sensor := openThermal(cfg.Thermal, logger)
		defer func() { _ = sensor.Close() }()
		opts = append(opts, bridge.WithThermalSensor(sensor))
	}

	if cfg.Indicator.Pin != "" {
		led, err := indicator.Open(cfg.Indicator.Pin, cfg.Indicator.ActiveLow)
		if err != nil {
			logger.Warn().Err(err).Str("pin", cfg.Indicator.Pin).Msg("indicator unavailable")
			opts = append(opts, bridge.WithIndicator(indicator.Nop{}))
		} else {
			opts = append(opts, bridge.WithIndicator(led))
		}
	}

	loop, err := bridge.New(hostLink, tags, opts...)
	if err != nil {
		return err
	}

	if err := loop.Start(ctx); err != nil {
		// The host has seen the diagnostic; stay silent until stopped
		<-ctx.Done()
		return err
	}

	err = loop.Run(ctx)
	stats := loop.Stats()
	logger.Info().
		Int64("iterations", stats.Iterations).
		Int64("frames_sent", stats.FramesSent).
		Msg("bridge stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openLink(cfg *config.Config, logger zerolog.Logger) (*link.Port, error) {
	name := cfg.Link.Port
	if name == "" {
		opts := detection.DefaultOptions()
		opts.IgnorePaths = append(opts.IgnorePaths, cfg.Link.IgnorePaths...)
		opts.USBOnly = cfg.Link.USBOnly
		if cfg.NFC.Transport == config.TransportUART {
			opts.IgnorePaths = append(opts.IgnorePaths, cfg.NFC.Path)
		}

		found, err := detection.FindPort(opts)
		if err != nil {
			return nil, fmt.Errorf("host link: %w", err)
		}
		logger.Info().Str("port", found.String()).Msg("detected host link")
		name = found.Path
	}

	lc := link.DefaultConfig(name)
	lc.BaudRate = cfg.Link.Baud
	port, err := link.Open(lc)
	if err != nil {
		return nil, fmt.Errorf("host link: %w", err)
	}
	return port, nil
}

// openReader returns the PN532 on the configured transport. A reader that
// cannot be opened still goes to the loop so Start reports it to the host.
func openReader(cfg *config.Config, logger zerolog.Logger) tagReader {
	var (
		transport pn532.Transport
		err       error
	)
	switch cfg.NFC.Transport {
	case config.TransportI2C:
		transport, err = i2c.New(cfg.NFC.Path)
	default:
		transport, err = uart.New(cfg.NFC.Path)
	}
	if err != nil {
		return unavailable{err: err}
	}

	device, err := pn532.New(transport,
		pn532.WithActivationRetries(byte(cfg.NFC.ActivationRetries)),
		pn532.WithReleaseTargets(cfg.NFC.ReleaseTargets),
		pn532.WithLogger(logger),
	)
	if err != nil {
		_ = transport.Close()
		return unavailable{err: err}
	}
	return device
}

func openThermal(cfg config.ThermalConfig, logger zerolog.Logger) thermalSensor {
	sensor, err := amg88xx.Open(cfg.Bus, uint16(cfg.Address))
	if err != nil {
		logger.Debug().Err(err).Msg("thermal sensor open failed")
		return unavailable{err: err}
	}
	return sensor
}

func serveMetrics(cfg config.MetricsConfig, reg *prometheus.Registry, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, metrics.Handler(reg))
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("path", cfg.Path).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}

func listDevices(w io.Writer) error {
	ports, err := detection.ListPorts(detection.DefaultOptions())
	if err != nil && !errors.Is(err, detection.ErrNoDevicesFound) {
		return err
	}
	_, _ = fmt.Fprintln(w, "Serial ports:")
	if len(ports) == 0 {
		_, _ = fmt.Fprintln(w, "  (none)")
	}
	for _, p := range ports {
		_, _ = fmt.Fprintf(w, "  %s\n", p)
	}

	buses, err := detection.ListI2CBuses()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, "I2C buses:")
	if len(buses) == 0 {
		_, _ = fmt.Fprintln(w, "  (none)")
	}
	for _, b := range buses {
		_, _ = fmt.Fprintf(w, "  %s\n", b)
	}
	return nil
}
