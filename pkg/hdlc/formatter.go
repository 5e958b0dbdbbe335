// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 PacketForge

package hdlc

import (
	"fmt"
	"strings"
)

// FormatFrame renders a decoded frame as a human-readable log line with
// timestamp, type name and interpreted value.
func FormatFrame(f *Frame) string {
	timestamp := f.Timestamp.Format("15:04:05.000")
	return fmt.Sprintf("[%s] %s (0x%02X) %s\n", timestamp, f.TypeName(), f.Type, FormatValue(f))
}

// FormatValue interprets a frame's value/payload according to its type.
func FormatValue(f *Frame) string {
	switch f.Type {
	case FrameInputVolume:
		return fmt.Sprintf("level=%d", f.Value)

	case FrameOutputVolume:
		return fmt.Sprintf("volume=%d", f.Value)

	case FrameBatteryLevel:
		// Battery voltage is a big-endian 16-bit millivolt reading
		// spread across the value byte and the first payload byte.
		if len(f.Payload) >= 1 {
			mv := uint16(f.Value)<<8 | uint16(f.Payload[0])
			return fmt.Sprintf("%d mV", mv)
		}
		return fmt.Sprintf("%d", f.Value)

	case FrameFirmwareVersion, FrameHardwareVersion:
		return fmt.Sprintf("%q", versionString(f))

	case FrameTxDelay, FramePersistence, FrameSlotTime, FrameTxTail, FrameSquelchLevel:
		return fmt.Sprintf("%d", f.Value)

	case FrameDuplex, FrameVerbosity, FrameConnTrack:
		return onOff(f.Value)

	case FrameInputAtten:
		if f.Value != 0 {
			return "on"
		}
		return "off"

	default:
		return fmt.Sprintf("value=%d%s", f.Value, hexDump(f.Payload))
	}
}

// versionString reassembles the ASCII version text, which the hardware
// sends as the value byte followed by the payload.
func versionString(f *Frame) string {
	var sb strings.Builder
	sb.WriteByte(f.Value)
	sb.Write(f.Payload)
	return sb.String()
}

func onOff(v uint8) string {
	if v != 0 {
		return "on"
	}
	return "off"
}

func hexDump(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(" payload=")
	for i, b := range payload {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}
