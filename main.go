// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 PacketForge
//
// tnclink - Mobilinkd TNC link manager and configuration tool
//
// Decodes the TNC's HDLC-style telemetry stream and drives its
// configuration protocol over a serial (RFCOMM) or WebSocket link.

package main

import (
	"os"

	"github.com/packetforge/tnclink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
