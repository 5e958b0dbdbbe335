// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 PacketForge

package tnc

import "github.com/packetforge/tnclink/pkg/hdlc"

// State is the connection lifecycle state.
type State int

// Connection states
const (
	StateIdle State = iota
	StateConnecting
	StateConnected
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "idle"
	}
}

// EventKind classifies an inbound frame for dispatch.
type EventKind int

// Event kinds, one per recognized frame type plus a catch-all.
const (
	EventOther EventKind = iota
	EventInputVolume
	EventOutputVolume
	EventTxDelay
	EventPersistence
	EventSlotTime
	EventTxTail
	EventDuplex
	EventSquelchLevel
	EventHardwareVersion
	EventFirmwareVersion
	EventVerbosity
	EventBatteryLevel
	EventInputAtten
	EventConnTrack
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventInputVolume:
		return "input_volume"
	case EventOutputVolume:
		return "output_volume"
	case EventTxDelay:
		return "tx_delay"
	case EventPersistence:
		return "persistence"
	case EventSlotTime:
		return "slot_time"
	case EventTxTail:
		return "tx_tail"
	case EventDuplex:
		return "duplex"
	case EventSquelchLevel:
		return "squelch_level"
	case EventHardwareVersion:
		return "hw_version"
	case EventFirmwareVersion:
		return "fw_version"
	case EventVerbosity:
		return "verbosity"
	case EventBatteryLevel:
		return "battery_level"
	case EventInputAtten:
		return "input_atten"
	case EventConnTrack:
		return "bt_conn_track"
	default:
		return "other"
	}
}

// KindOf maps an inbound frame type code to its event kind.
func KindOf(frameType uint8) EventKind {
	switch frameType {
	case hdlc.FrameInputVolume:
		return EventInputVolume
	case hdlc.FrameOutputVolume:
		return EventOutputVolume
	case hdlc.FrameTxDelay:
		return EventTxDelay
	case hdlc.FramePersistence:
		return EventPersistence
	case hdlc.FrameSlotTime:
		return EventSlotTime
	case hdlc.FrameTxTail:
		return EventTxTail
	case hdlc.FrameDuplex:
		return EventDuplex
	case hdlc.FrameSquelchLevel:
		return EventSquelchLevel
	case hdlc.FrameHardwareVersion:
		return EventHardwareVersion
	case hdlc.FrameFirmwareVersion:
		return EventFirmwareVersion
	case hdlc.FrameVerbosity:
		return EventVerbosity
	case hdlc.FrameBatteryLevel:
		return EventBatteryLevel
	case hdlc.FrameInputAtten:
		return EventInputAtten
	case hdlc.FrameConnTrack:
		return EventConnTrack
	default:
		return EventOther
	}
}

// Sink receives lifecycle and telemetry notifications from a Service.
//
// StateChanged and DeviceIdentified may be invoked while the Service
// holds its internal lock: implementations must not call back into the
// Service synchronously. Hand the event to a channel or message queue
// and return.
type Sink interface {
	StateChanged(s State)
	DeviceIdentified(name string)
	Frame(kind EventKind, f *hdlc.Frame)
	Failure(msg string)
}
