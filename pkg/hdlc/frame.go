// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 PacketForge

package hdlc

import "time"

// Frame represents one decoded protocol message from the TNC.
// The closing FEND delimiter is not part of Payload.
type Frame struct {
	Type      uint8
	Value     uint8
	Payload   []byte
	Timestamp time.Time
}

// Size reports the frame length excluding the type byte, i.e. the value
// byte plus the payload.
func (f *Frame) Size() int {
	return 1 + len(f.Payload)
}

// TypeName returns the symbolic name of the frame's type code.
func (f *Frame) TypeName() string {
	switch f.Type {
	case FrameInputVolume:
		return "INPUT_VOLUME"
	case FrameBatteryLevel:
		return "BATTERY_LEVEL"
	case FrameOutputVolume:
		return "OUTPUT_VOLUME"
	case FrameInputAtten:
		return "INPUT_ATTEN"
	case FrameSquelchLevel:
		return "SQUELCH_LEVEL"
	case FrameVerbosity:
		return "VERBOSITY"
	case FrameTxDelay:
		return "TX_DELAY"
	case FramePersistence:
		return "PERSISTENCE"
	case FrameSlotTime:
		return "SLOT_TIME"
	case FrameTxTail:
		return "TX_TAIL"
	case FrameDuplex:
		return "DUPLEX"
	case FrameFirmwareVersion:
		return "FW_VERSION"
	case FrameHardwareVersion:
		return "HW_VERSION"
	case FrameConnTrack:
		return "BT_CONN_TRACK"
	default:
		return "UNKNOWN"
	}
}
