// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 PacketForge

// Package tnc manages the control-and-telemetry link to a TNC device.
//
// It is transport-agnostic: anything that can dial a bidirectional byte
// channel (serial port, Bluetooth RFCOMM node, WebSocket bridge) can
// carry the link. The Service owns the connection lifecycle and
// multiplexes outbound configuration commands with the inbound frame
// stream.
package tnc

import (
	"context"
	"io"
)

// Conn is an open bidirectional byte channel to the device. Closing it
// is the sole cancellation primitive: a blocked Read must observe the
// close and return an error promptly.
type Conn interface {
	io.Reader
	io.Writer
	io.Closer
}

// Dialer opens a Conn to a specific device. Implementations must honor
// context cancellation during Dial.
type Dialer interface {
	// Name identifies the target device for display purposes.
	Name() string
	Dial(ctx context.Context) (Conn, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc struct {
	Target string
	Fn     func(ctx context.Context) (Conn, error)
}

func (d DialerFunc) Name() string { return d.Target }

func (d DialerFunc) Dial(ctx context.Context) (Conn, error) { return d.Fn(ctx) }
