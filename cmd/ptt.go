// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 PacketForge

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/packetforge/tnclink/pkg/hdlc"
)

var pttHold time.Duration

var pttCmd = &cobra.Command{
	Use:   "ptt mark|space|both|off",
	Short: "Key or unkey the transmitter",
	Long: `Key the transmitter with the selected tone for the hold duration,
then release it.

Modes:
  mark   - transmit the mark tone
  space  - transmit the space tone
  both   - alternate mark and space
  off    - unkey immediately

The transmitter is always unkeyed before this command exits, including
on Ctrl+C. Use for audio level adjustment only.`,
	Args: cobra.ExactArgs(1),
	RunE: runPtt,
}

func init() {
	rootCmd.AddCommand(pttCmd)
	pttCmd.Flags().DurationVar(&pttHold, "hold", 5*time.Second, "How long to keep the transmitter keyed")
}

func parsePttMode(s string) (hdlc.PttMode, error) {
	switch s {
	case "mark":
		return hdlc.PttMark, nil
	case "space":
		return hdlc.PttSpace, nil
	case "both":
		return hdlc.PttBoth, nil
	case "off":
		return hdlc.PttOff, nil
	default:
		return hdlc.PttOff, fmt.Errorf("invalid PTT mode %q", s)
	}
}

func runPtt(cmd *cobra.Command, args []string) error {
	mode, err := parsePttMode(args[0])
	if err != nil {
		return err
	}

	conn, connInfo, err := openConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write(hdlc.Ptt(mode)); err != nil {
		return fmt.Errorf("write failed: %v", err)
	}
	if mode == hdlc.PttOff {
		return nil
	}

	fmt.Printf("Transmitter keyed (%s) on %s for %s\n", mode, connInfo, pttHold)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case <-time.After(pttHold):
	case <-interrupt:
	}

	// Unkey no matter how we got here.
	if _, err := conn.Write(hdlc.Ptt(hdlc.PttOff)); err != nil {
		return fmt.Errorf("failed to unkey transmitter: %v", err)
	}
	fmt.Println("Transmitter unkeyed")
	return nil
}
