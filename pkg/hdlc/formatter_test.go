// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 PacketForge

package hdlc

import (
	"strings"
	"testing"
	"time"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		frame *Frame
		want  string
	}{
		{
			name:  "input volume",
			frame: &Frame{Type: FrameInputVolume, Value: 42},
			want:  "level=42",
		},
		{
			name:  "battery millivolts",
			frame: &Frame{Type: FrameBatteryLevel, Value: 0x0F, Payload: []byte{0xA0}},
			want:  "4000 mV",
		},
		{
			name:  "battery without payload",
			frame: &Frame{Type: FrameBatteryLevel, Value: 37},
			want:  "37",
		},
		{
			name:  "firmware version string",
			frame: &Frame{Type: FrameFirmwareVersion, Value: '1', Payload: []byte(".1.6")},
			want:  `"1.1.6"`,
		},
		{
			name:  "duplex on",
			frame: &Frame{Type: FrameDuplex, Value: 1},
			want:  "on",
		},
		{
			name:  "verbosity off",
			frame: &Frame{Type: FrameVerbosity, Value: 0},
			want:  "off",
		},
		{
			name:  "input atten uses nonzero as on",
			frame: &Frame{Type: FrameInputAtten, Value: 2},
			want:  "on",
		},
		{
			name:  "tx delay numeric",
			frame: &Frame{Type: FrameTxDelay, Value: 25},
			want:  "25",
		},
		{
			name:  "unknown type with payload",
			frame: &Frame{Type: 0x63, Value: 7, Payload: []byte{0xAB, 0xCD}},
			want:  "value=7 payload=AB CD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.frame); got != tt.want {
				t.Errorf("FormatValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatFrame(t *testing.T) {
	f := &Frame{
		Type:      FrameInputVolume,
		Value:     42,
		Timestamp: time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC),
	}
	got := FormatFrame(f)
	if !strings.Contains(got, "15:09:26.535") {
		t.Errorf("missing timestamp: %q", got)
	}
	if !strings.Contains(got, "INPUT_VOLUME") {
		t.Errorf("missing type name: %q", got)
	}
	if !strings.Contains(got, "level=42") {
		t.Errorf("missing value: %q", got)
	}
}

func TestTypeName_Unknown(t *testing.T) {
	f := &Frame{Type: 0x63}
	if got := f.TypeName(); got != "UNKNOWN" {
		t.Errorf("TypeName() = %q, want UNKNOWN", got)
	}
}
