// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 PacketForge

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/packetforge/tnclink/pkg/hdlc"
)

var infoTimeout int

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Query and display all TNC settings",
	Long: `Request every configurable value from the TNC and print a report.

Sends the get-all-values command and collects the echo frames for the
timeout window. Values that the TNC did not report within the window are
shown as unknown.

Exit codes:
  0 - At least one value received
  1 - No frames received before timeout
  2 - Connection error`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().IntVar(&infoTimeout, "timeout", 3, "Seconds to wait for the TNC's report")
}

// infoRows fixes the report order.
var infoRows = []struct {
	label     string
	frameType uint8
}{
	{"Hardware version", hdlc.FrameHardwareVersion},
	{"Firmware version", hdlc.FrameFirmwareVersion},
	{"Battery", hdlc.FrameBatteryLevel},
	{"TX delay", hdlc.FrameTxDelay},
	{"Persistence", hdlc.FramePersistence},
	{"Slot time", hdlc.FrameSlotTime},
	{"TX tail", hdlc.FrameTxTail},
	{"Duplex", hdlc.FrameDuplex},
	{"Squelch level", hdlc.FrameSquelchLevel},
	{"Output volume", hdlc.FrameOutputVolume},
	{"Input attenuation", hdlc.FrameInputAtten},
	{"Verbosity", hdlc.FrameVerbosity},
	{"BT connection tracking", hdlc.FrameConnTrack},
}

func runInfo(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := openConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("tnclink - TNC Settings\n")
	fmt.Printf("Connection: %s\n\n", connInfo)

	if _, err := conn.Write(hdlc.GetAllValues()); err != nil {
		return fmt.Errorf("failed to request values: %v", err)
	}
	if _, err := conn.Write(hdlc.GetOutputVolume()); err != nil {
		return fmt.Errorf("failed to request output volume: %v", err)
	}

	// Collect echo frames until the timeout. The reader goroutine owns
	// the conn read side; closing the conn on timeout unblocks it.
	frames := make(chan *hdlc.Frame, 32)
	go func() {
		defer close(frames)
		decoder := hdlc.NewDecoder()
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			for i := 0; i < n; i++ {
				frame, derr := decoder.Process(buf[i])
				if derr != nil {
					continue
				}
				if frame != nil {
					frames <- frame
				}
			}
			if err != nil {
				return
			}
		}
	}()

	values := make(map[uint8]*hdlc.Frame)
	deadline := time.After(time.Duration(infoTimeout) * time.Second)

collect:
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				break collect
			}
			values[frame.Type] = frame
		case <-deadline:
			conn.Close()
			break collect
		}
	}

	if len(values) == 0 {
		return fmt.Errorf("no response from TNC within %d seconds", infoTimeout)
	}

	for _, row := range infoRows {
		if frame, ok := values[row.frameType]; ok {
			fmt.Printf("  %-24s %s\n", row.label+":", hdlc.FormatValue(frame))
		} else {
			fmt.Printf("  %-24s unknown\n", row.label+":")
		}
	}
	return nil
}
