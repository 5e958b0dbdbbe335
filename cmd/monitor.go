// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 PacketForge

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/packetforge/tnclink/pkg/hdlc"
	"github.com/packetforge/tnclink/pkg/tnc"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display decoded TNC frames in human-readable format",
	Long: `Continuously decode and display TNC telemetry frames as they arrive.

Connects through the connection manager, puts the TNC into listening mode
(transmitter unkeyed, audio input level streaming) and prints every frame
with timestamp, type and interpreted value.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

// printSink prints every notification to stdout and signals done when
// the link drops.
type printSink struct {
	done chan struct{}
}

func (s *printSink) StateChanged(state tnc.State) {
	fmt.Printf("-- state: %s\n", state)
}

func (s *printSink) DeviceIdentified(name string) {
	fmt.Printf("-- device: %s\n", name)
}

func (s *printSink) Frame(kind tnc.EventKind, f *hdlc.Frame) {
	fmt.Print(hdlc.FormatFrame(f))
}

func (s *printSink) Failure(msg string) {
	fmt.Fprintf(os.Stderr, "-- %s\n", msg)
	select {
	case s.done <- struct{}{}:
	default:
	}
}

func runMonitor(cmd *cobra.Command, args []string) error {
	dialer, err := newDialer()
	if err != nil {
		return err
	}

	sink := &printSink{done: make(chan struct{}, 1)}
	svc := tnc.NewService(sink, logger)

	fmt.Printf("tnclink - Frame Monitor\n")
	fmt.Printf("Target: %s\n", dialer.Name())
	fmt.Printf("Press Ctrl+C to exit\n\n")

	svc.Connect(dialer)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case <-interrupt:
		svc.Stop()
		return nil
	case <-sink.done:
		// Connect failure or connection loss; either way there is
		// nothing left to monitor.
		svc.Stop()
		return nil
	}
}
