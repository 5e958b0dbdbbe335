// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 PacketForge

package hdlc

import (
	"fmt"
	"strings"
	"testing"
)

func TestStatistics_Counters(t *testing.T) {
	s := NewStatistics()
	d := NewDecoder()

	wire := append(EncodeFrame(FrameTxDelay, 25, nil), 0xC0, 0x07) // valid frame + framing error
	s.AddBytes(len(wire))
	for _, b := range wire {
		frame, err := d.Process(b)
		s.Update(frame, err)
	}

	if s.TotalBytes != uint64(len(wire)) {
		t.Errorf("TotalBytes = %d, want %d", s.TotalBytes, len(wire))
	}
	if s.TotalFrames != 1 {
		t.Errorf("TotalFrames = %d, want 1", s.TotalFrames)
	}
	if s.FramingErrors != 1 {
		t.Errorf("FramingErrors = %d, want 1", s.FramingErrors)
	}
}

func TestStatistics_Summary(t *testing.T) {
	s := NewStatistics()
	s.AddBytes(10)
	s.Update(&Frame{}, nil)
	s.Update(nil, fmt.Errorf("boom"))
	s.CalculateRates()

	sum := s.Summary()
	if !strings.Contains(sum, "10 bytes") || !strings.Contains(sum, "1 frames") || !strings.Contains(sum, "1 framing errors") {
		t.Errorf("unexpected summary: %q", sum)
	}
}
