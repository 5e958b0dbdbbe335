// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 PacketForge

package hdlc

// Command builder functions produce the exact wire bytes the TNC expects.
// Every call allocates a fresh slice; the byte values are a hardware
// compatibility contract and must be reproduced bit-for-bit.
//
// Parameter bytes in outbound commands are written raw, without FESC
// escaping, matching the hardware's command parser.

func boolByte(on bool) byte {
	if on {
		return 1
	}
	return 0
}

// SetTxDelay sets the transmitter keyup delay in 10 ms units.
func SetTxDelay(v uint8) []byte {
	return []byte{FEND, cmdTxDelay, v, FEND}
}

// SetPersistence sets the CSMA persistence parameter (p = v/256).
func SetPersistence(v uint8) []byte {
	return []byte{FEND, cmdPersistence, v, FEND}
}

// SetSlotTime sets the CSMA slot interval in 10 ms units.
func SetSlotTime(v uint8) []byte {
	return []byte{FEND, cmdSlotTime, v, FEND}
}

// SetTxTail sets the post-transmission hold time in 10 ms units.
func SetTxTail(v uint8) []byte {
	return []byte{FEND, cmdTxTail, v, FEND}
}

// SetDuplex enables or disables full-duplex operation.
func SetDuplex(on bool) []byte {
	return []byte{FEND, cmdDuplex, boolByte(on), FEND}
}

// SetConnTrack enables or disables Bluetooth connection tracking.
func SetConnTrack(on bool) []byte {
	return []byte{FEND, cmdHardware, hwSetConnTrack, boolByte(on), FEND}
}

// SetVerbosity enables or disables verbose hardware output.
func SetVerbosity(on bool) []byte {
	return []byte{FEND, cmdHardware, hwSetVerbosity, boolByte(on), FEND}
}

// SetInputAtten enables or disables the audio input attenuator.
// The hardware uses 2 for enabled, 0 for disabled.
func SetInputAtten(on bool) []byte {
	v := byte(0)
	if on {
		v = 2
	}
	return []byte{FEND, cmdHardware, hwSetInputAtten, v, FEND}
}

// SetSquelch sets the squelch level parameter byte directly.
func SetSquelch(v uint8) []byte {
	return []byte{FEND, cmdHardware, hwSetSquelch, v, FEND}
}

// SetDcd enables or disables data carrier detect. DCD on corresponds to
// squelch level 0; DCD off to squelch level 2.
func SetDcd(on bool) []byte {
	if on {
		return SetSquelch(0)
	}
	return SetSquelch(2)
}

// SetOutputVolume sets the audio output level.
func SetOutputVolume(v uint8) []byte {
	return []byte{FEND, cmdHardware, hwSetOutputVolume, v, FEND}
}

// StreamVolume asks the TNC to stream audio input level frames.
func StreamVolume() []byte {
	return []byte{FEND, cmdHardware, hwStreamVolume, FEND}
}

// GetOutputVolume queries the current audio output level.
func GetOutputVolume() []byte {
	return []byte{FEND, cmdHardware, hwGetOutputVolume, FEND}
}

// GetAllValues asks the TNC to report every configurable value.
func GetAllValues() []byte {
	return []byte{FEND, cmdHardware, hwGetAllValues, FEND}
}

// Ptt keys or unkeys the transmitter. Any unrecognized mode maps to
// PttOff so a bad value can never leave the transmitter keyed.
func Ptt(mode PttMode) []byte {
	var sub byte
	switch mode {
	case PttMark:
		sub = hwPttMark
	case PttSpace:
		sub = hwPttSpace
	case PttBoth:
		sub = hwPttBoth
	default:
		sub = hwPttOff
	}
	return []byte{FEND, cmdHardware, sub, FEND}
}

// EncodeFrame builds a complete inbound-style frame: FEND, discriminator,
// type, value, payload, FEND, with FESC escaping applied to any literal
// FEND/FESC bytes after the discriminator. It is the inverse of the
// decoder and is used by tests and capture tooling.
func EncodeFrame(frameType, value uint8, payload []byte) []byte {
	out := make([]byte, 0, len(payload)*2+6)
	out = append(out, FEND, HardwareType)
	out = appendEscaped(out, frameType)
	out = appendEscaped(out, value)
	for _, b := range payload {
		out = appendEscaped(out, b)
	}
	return append(out, FEND)
}

func appendEscaped(out []byte, b byte) []byte {
	switch b {
	case FEND:
		return append(out, FESC, TFEND)
	case FESC:
		return append(out, FESC, TFESC)
	default:
		return append(out, b)
	}
}
