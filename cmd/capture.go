// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 PacketForge

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/packetforge/tnclink/pkg/hdlc"
)

var captureOutput string

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record decoded frames to a CBOR log file",
	Long: `Decode the TNC telemetry stream and append every frame to a CBOR
log file, one record per frame with timestamp, type, value and payload.

The capture runs until Ctrl+C and prints session statistics on exit.
Records can be post-processed with any CBOR tooling.`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "frames.cbor", "Output file")
}

// captureRecord is one frame as stored in the capture file.
type captureRecord struct {
	Time    time.Time `cbor:"1,keyasint"`
	Type    uint8     `cbor:"2,keyasint"`
	Value   uint8     `cbor:"3,keyasint"`
	Payload []byte    `cbor:"4,keyasint,omitempty"`
}

func runCapture(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := openConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	out, err := os.OpenFile(captureOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %v", captureOutput, err)
	}
	defer out.Close()

	enc := cbor.NewEncoder(out)

	fmt.Printf("tnclink - Frame Capture\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Output: %s\n", captureOutput)
	fmt.Printf("Press Ctrl+C to stop\n\n")

	// Streaming the audio input level gives the capture something to
	// record even on an otherwise quiet link.
	if _, err := conn.Write(hdlc.StreamVolume()); err != nil {
		return fmt.Errorf("write failed: %v", err)
	}

	stats := hdlc.NewStatistics()
	done := make(chan error, 1)

	go func() {
		decoder := hdlc.NewDecoder()
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			stats.AddBytes(n)
			for i := 0; i < n; i++ {
				frame, derr := decoder.Process(buf[i])
				stats.Update(frame, derr)
				if derr != nil || frame == nil {
					continue
				}
				rec := captureRecord{
					Time:    frame.Timestamp,
					Type:    frame.Type,
					Value:   frame.Value,
					Payload: frame.Payload,
				}
				if err := enc.Encode(rec); err != nil {
					done <- fmt.Errorf("failed to write record: %v", err)
					return
				}
			}
			if err != nil {
				done <- nil
				return
			}
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case <-interrupt:
		// Closing the conn unblocks the reader.
		conn.Close()
		<-done
	case err = <-done:
	}

	stats.CalculateRates()
	fmt.Printf("\nCaptured: %s\n", stats.Summary())
	return err
}
