// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 PacketForge

// Package hdlc implements the Mobilinkd TNC hardware control protocol.
//
// The TNC speaks a KISS/HDLC-style byte-stuffed framing over an RFCOMM
// serial link. This package provides the frame decoder state machine,
// command builders for every configuration/query operation, and a
// human-readable formatter for decoded frames.
package hdlc

// Protocol framing bytes
const (
	FEND  = 0xC0 // frame delimiter
	FESC  = 0xDB // escape marker
	TFEND = 0xDC // escaped literal FEND
	TFESC = 0xDD // escaped literal FESC
)

// HardwareType is the discriminator byte required immediately after the
// opening FEND of every frame the TNC emits.
const HardwareType = 0x06

// BufferSize is the decoder's fixed accumulation capacity in bytes.
const BufferSize = 330

// Command opcodes (second byte of an outbound frame). These values are a
// hardware compatibility contract and must not change.
const (
	cmdTxDelay     = 0x01
	cmdPersistence = 0x02
	cmdSlotTime    = 0x03
	cmdTxTail      = 0x04
	cmdDuplex      = 0x05
	cmdHardware    = 0x06
)

// Hardware sub-commands (third byte of a cmdHardware frame).
const (
	hwSetOutputVolume = 0x01
	hwSetInputAtten   = 0x02
	hwSetSquelch      = 0x03
	hwStreamVolume    = 0x05
	hwPttMark         = 0x07
	hwPttSpace        = 0x08
	hwPttBoth         = 0x09
	hwPttOff          = 0x0A
	hwGetOutputVolume = 0x0C
	hwSetVerbosity    = 0x10
	hwSetConnTrack    = 0x45
	hwGetAllValues    = 0x7F
)

// Inbound frame type codes (first data byte of a decoded frame).
const (
	FrameInputVolume     = 4
	FrameBatteryLevel    = 6
	FrameOutputVolume    = 12
	FrameInputAtten      = 13
	FrameSquelchLevel    = 14
	FrameVerbosity       = 17
	FrameTxDelay         = 33
	FramePersistence     = 34
	FrameSlotTime        = 35
	FrameTxTail          = 36
	FrameDuplex          = 37
	FrameFirmwareVersion = 40
	FrameHardwareVersion = 41
	FrameConnTrack       = 70
)

// Decoder states (internal)
const (
	stateAwaitStart = iota
	stateAwaitType
	stateAwaitEscape
	stateAwaitData
)

// PttMode selects which audio tone(s) the transmitter keys up with.
type PttMode int

// Push-to-talk modes
const (
	PttOff PttMode = iota
	PttMark
	PttSpace
	PttBoth
)

// String returns the lowercase mode name.
func (m PttMode) String() string {
	switch m {
	case PttMark:
		return "mark"
	case PttSpace:
		return "space"
	case PttBoth:
		return "both"
	default:
		return "off"
	}
}
