// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 PacketForge

package hdlc

import (
	"fmt"
	"time"
)

// Decoder implements the TNC frame decoder state machine.
// Feed it one byte at a time with Process; it emits a Frame each time a
// complete, well-formed frame has been accumulated. All errors are
// recoverable: the decoder resynchronizes on the next FEND and keeps going.
type Decoder struct {
	state  int
	buffer []byte
	pos    int
}

// NewDecoder creates a new protocol decoder.
func NewDecoder() *Decoder {
	return &Decoder{
		state:  stateAwaitStart,
		buffer: make([]byte, BufferSize),
	}
}

// Reset returns the decoder to its initial state, discarding any
// partially accumulated frame.
func (d *Decoder) Reset() {
	d.state = stateAwaitStart
	d.pos = 0
}

// Process runs a single byte through the decoder state machine.
// It returns a completed frame, or nil while a frame is still in
// progress. A non-nil error reports a framing violation or buffer
// overflow; the decoder has already resynchronized and the caller may
// simply continue feeding bytes.
func (d *Decoder) Process(b byte) (*Frame, error) {
	switch d.state {
	case stateAwaitStart:
		if b == FEND {
			d.pos = 0
			d.state = stateAwaitType
		}
		return nil, nil

	case stateAwaitType:
		if b == FEND {
			// Back-to-back delimiters; frame is still starting.
			return nil, nil
		}
		if b != HardwareType {
			d.state = stateAwaitStart
			return nil, fmt.Errorf("invalid frame type 0x%02X", b)
		}
		d.state = stateAwaitData
		return nil, nil

	case stateAwaitEscape:
		d.state = stateAwaitData
		switch b {
		case TFESC:
			return nil, d.push(FESC)
		case TFEND:
			return nil, d.push(FEND)
		default:
			// Tolerate malformed escapes; take the byte verbatim.
			return nil, d.push(b)
		}

	case stateAwaitData:
		switch b {
		case FESC:
			d.state = stateAwaitEscape
			return nil, nil
		case FEND:
			d.state = stateAwaitStart
			if d.pos < 2 {
				// Delimiter with no type/value; nothing to emit.
				return nil, nil
			}
			frame := &Frame{
				Type:      d.buffer[0],
				Value:     d.buffer[1],
				Payload:   append([]byte(nil), d.buffer[2:d.pos]...),
				Timestamp: time.Now(),
			}
			d.pos = 0
			return frame, nil
		default:
			return nil, d.push(b)
		}

	default:
		d.Reset()
		return nil, fmt.Errorf("invalid decoder state: %d", d.state)
	}
}

// push appends a data byte to the accumulation buffer, enforcing the
// fixed capacity. On overflow the decoder resets and reports an error.
func (d *Decoder) push(b byte) error {
	if d.pos >= BufferSize {
		d.Reset()
		return fmt.Errorf("frame exceeds %d byte buffer", BufferSize)
	}
	d.buffer[d.pos] = b
	d.pos++
	return nil
}
