// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 PacketForge

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/packetforge/tnclink/pkg/hdlc"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Set a TNC configuration parameter",
	Long: `Send a single configuration command to the TNC.

Numeric parameters take a value 0-255; switches take on|off.

Examples:
  tnclink set txdelay 25
  tnclink set duplex off
  tnclink set volume 160`,
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.AddCommand(
		numericSetCmd("txdelay", "Transmitter keyup delay (10 ms units)", hdlc.SetTxDelay),
		numericSetCmd("persistence", "CSMA persistence parameter (p = value/256)", hdlc.SetPersistence),
		numericSetCmd("slottime", "CSMA slot interval (10 ms units)", hdlc.SetSlotTime),
		numericSetCmd("txtail", "Post-transmission hold time (10 ms units)", hdlc.SetTxTail),
		numericSetCmd("squelch", "Squelch level", hdlc.SetSquelch),
		numericSetCmd("volume", "Audio output level", hdlc.SetOutputVolume),
		switchSetCmd("duplex", "Full-duplex operation", hdlc.SetDuplex),
		switchSetCmd("conntrack", "Bluetooth connection tracking", hdlc.SetConnTrack),
		switchSetCmd("verbosity", "Verbose hardware output", hdlc.SetVerbosity),
		switchSetCmd("atten", "Audio input attenuator", hdlc.SetInputAtten),
		switchSetCmd("dcd", "Data carrier detect", hdlc.SetDcd),
	)
}

// numericSetCmd builds a subcommand for a command taking a 0-255 value.
func numericSetCmd(name, short string, build func(uint8) []byte) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <value>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 8)
			if err != nil {
				return fmt.Errorf("invalid value %q: must be 0-255", args[0])
			}
			return sendCommand(build(uint8(v)))
		},
	}
}

// switchSetCmd builds a subcommand for an on/off command.
func switchSetCmd(name, short string, build func(bool) []byte) *cobra.Command {
	return &cobra.Command{
		Use:   name + " on|off",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var on bool
			switch args[0] {
			case "on":
				on = true
			case "off":
				on = false
			default:
				return fmt.Errorf("invalid value %q: must be on or off", args[0])
			}
			return sendCommand(build(on))
		},
	}
}

// sendCommand opens the connection, writes one command and closes.
func sendCommand(out []byte) error {
	conn, _, err := openConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write(out); err != nil {
		return fmt.Errorf("write failed: %v", err)
	}
	return nil
}
