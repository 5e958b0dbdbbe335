// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 PacketForge

package hdlc

import (
	"fmt"
	"time"
)

// Statistics tracks link health counters for a decode session.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalBytes    uint64
	TotalFrames   uint64
	FramingErrors uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// AddBytes records raw bytes read from the transport.
func (s *Statistics) AddBytes(n int) {
	s.TotalBytes += uint64(n)
}

// Update records the outcome of one Process call.
func (s *Statistics) Update(frame *Frame, err error) {
	if err != nil {
		s.FramingErrors++
		return
	}
	if frame != nil {
		s.TotalFrames++
	}
}

// CalculateRates recomputes the per-second rates over the whole session.
func (s *Statistics) CalculateRates() {
	now := time.Now()
	s.LastUpdateTime = now

	elapsed := now.Sub(s.StartTime).Seconds()
	if elapsed <= 0 {
		return
	}
	s.FrameRate = float64(s.TotalFrames) / elapsed
	s.ErrorRate = float64(s.FramingErrors) / elapsed
}

// Summary returns a one-line description of the session counters.
func (s *Statistics) Summary() string {
	return fmt.Sprintf("%d bytes, %d frames, %d framing errors (%.1f frames/s)",
		s.TotalBytes, s.TotalFrames, s.FramingErrors, s.FrameRate)
}
