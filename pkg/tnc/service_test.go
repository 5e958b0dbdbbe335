// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 PacketForge

package tnc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/packetforge/tnclink/pkg/hdlc"
)

// fakeConn is an in-memory Conn. Reads block until the test queues data
// or the conn is closed; writes are captured for inspection.
type fakeConn struct {
	mu         sync.Mutex
	writes     []byte
	failWrites bool
	inbox      chan []byte
	closed     chan struct{}
	closeOnce  sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbox:  make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) Read(p []byte) (int, error) {
	select {
	case data := <-c.inbox:
		return copy(p, data), nil
	case <-c.closed:
		return 0, io.ErrClosedPipe
	}
}

func (c *fakeConn) Write(p []byte) (int, error) {
	select {
	case <-c.closed:
		return 0, io.ErrClosedPipe
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrites {
		return 0, fmt.Errorf("injected write failure")
	}
	c.writes = append(c.writes, p...)
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) setFailWrites(fail bool) {
	c.mu.Lock()
	c.failWrites = fail
	c.mu.Unlock()
}

func (c *fakeConn) written() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.writes...)
}

func (c *fakeConn) clearWrites() {
	c.mu.Lock()
	c.writes = nil
	c.mu.Unlock()
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// fakeDialer hands out a fakeConn, optionally failing or blocking until
// released.
type fakeDialer struct {
	name  string
	conn  *fakeConn
	err   error
	block chan struct{} // if non-nil, Dial waits for close or ctx
}

func (d *fakeDialer) Name() string { return d.name }

func (d *fakeDialer) Dial(ctx context.Context) (Conn, error) {
	if d.block != nil {
		select {
		case <-d.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

// lateDialer ignores cancellation and hands back its conn whenever it is
// released, mimicking a transport that cannot abort an in-flight open.
type lateDialer struct {
	name    string
	conn    *fakeConn
	release chan struct{}
}

func (d *lateDialer) Name() string { return d.name }

func (d *lateDialer) Dial(ctx context.Context) (Conn, error) {
	<-d.release
	return d.conn, nil
}

// recordSink captures every notification for later assertions.
type recordSink struct {
	mu       sync.Mutex
	states   []State
	names    []string
	failures []string
	kinds    []EventKind
	frames   []*hdlc.Frame
}

func (r *recordSink) StateChanged(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recordSink) DeviceIdentified(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

func (r *recordSink) Frame(kind EventKind, f *hdlc.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
	r.frames = append(r.frames, f)
}

func (r *recordSink) Failure(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, msg)
}

func (r *recordSink) stateList() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func (r *recordSink) failureList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.failures...)
}

func (r *recordSink) frameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// connectService builds a connected Service backed by a fakeConn with
// the listen sequence already drained.
func connectService(t *testing.T) (*Service, *fakeConn, *recordSink) {
	t.Helper()
	sink := &recordSink{}
	svc := NewService(sink, nil)
	conn := newFakeConn()
	svc.Connect(&fakeDialer{name: "TNC-7", conn: conn})

	waitFor(t, func() bool { return svc.State() == StateConnected }, "connected state")
	listen := append(hdlc.Ptt(hdlc.PttOff), hdlc.StreamVolume()...)
	waitFor(t, func() bool { return bytes.Equal(conn.written(), listen) }, "listen sequence")
	conn.clearWrites()
	return svc, conn, sink
}

func TestConnect_Success(t *testing.T) {
	sink := &recordSink{}
	svc := NewService(sink, nil)
	conn := newFakeConn()
	svc.Connect(&fakeDialer{name: "TNC-7", conn: conn})

	waitFor(t, func() bool { return svc.State() == StateConnected }, "connected state")

	states := sink.stateList()
	want := []State{StateConnecting, StateConnected}
	if len(states) != len(want) || states[0] != want[0] || states[1] != want[1] {
		t.Errorf("state transitions = %v, want %v", states, want)
	}

	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.names) == 1 && sink.names[0] == "TNC-7"
	}, "device identification")

	// Connecting must issue the listen sequence: PTT off, then the
	// stream-volume query.
	listen := append(hdlc.Ptt(hdlc.PttOff), hdlc.StreamVolume()...)
	waitFor(t, func() bool { return bytes.Equal(conn.written(), listen) }, "listen sequence")
}

func TestConnect_Failure(t *testing.T) {
	sink := &recordSink{}
	svc := NewService(sink, nil)
	svc.Connect(&fakeDialer{name: "gone", err: fmt.Errorf("no route to device")})

	waitFor(t, func() bool {
		failures := sink.failureList()
		return len(failures) == 1 && failures[0] == "Unable to connect device"
	}, "failure notification")

	if svc.State() != StateIdle {
		t.Errorf("state = %v, want idle", svc.State())
	}

	// A failed attempt leaves the service usable for the next connect.
	conn := newFakeConn()
	svc.Connect(&fakeDialer{name: "TNC-7", conn: conn})
	waitFor(t, func() bool { return svc.State() == StateConnected }, "connected after failure")
}

func TestConnect_SupersedesPendingAttempt(t *testing.T) {
	sink := &recordSink{}
	svc := NewService(sink, nil)

	release := make(chan struct{})
	firstConn := newFakeConn()
	svc.Connect(&lateDialer{name: "first", conn: firstConn, release: release})

	if svc.State() != StateConnecting {
		t.Fatalf("state = %v, want connecting", svc.State())
	}

	secondConn := newFakeConn()
	svc.Connect(&fakeDialer{name: "second", conn: secondConn})
	waitFor(t, func() bool { return svc.State() == StateConnected }, "second attempt connected")

	// Let the first dial complete late; its conn must be discarded and
	// the established session untouched.
	close(release)
	waitFor(t, func() bool { return firstConn.isClosed() }, "stale conn closed")

	if svc.State() != StateConnected {
		t.Errorf("state = %v, want connected", svc.State())
	}
	if secondConn.isClosed() {
		t.Error("active session conn was closed by the stale attempt")
	}
	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.names) == 1 && sink.names[0] == "second"
	}, "only the latest attempt identifying")
}

func TestCommands_NoOpUnlessConnected(t *testing.T) {
	sink := &recordSink{}
	svc := NewService(sink, nil)

	// Idle: nothing to write to, nothing may panic.
	svc.SetTxDelay(25)
	svc.Ptt(hdlc.PttMark)
	svc.GetAllValues()

	// Connecting: still a no-op.
	release := make(chan struct{})
	conn := newFakeConn()
	svc.Connect(&fakeDialer{name: "slow", conn: conn, block: release})
	svc.SetPersistence(64)
	svc.SetDcd(true)

	close(release)
	waitFor(t, func() bool { return svc.State() == StateConnected }, "connected state")

	// Only the listen sequence may have been written.
	listen := append(hdlc.Ptt(hdlc.PttOff), hdlc.StreamVolume()...)
	waitFor(t, func() bool { return bytes.Equal(conn.written(), listen) }, "listen sequence only")
}

func TestCommands_WriteExactBytes(t *testing.T) {
	svc, conn, _ := connectService(t)
	defer svc.Stop()

	svc.SetTxDelay(25)
	svc.Ptt(hdlc.PttMark)
	svc.SetOutputVolume(128)

	want := append(hdlc.SetTxDelay(25), hdlc.Ptt(hdlc.PttMark)...)
	want = append(want, hdlc.SetOutputVolume(128)...)
	if got := conn.written(); !bytes.Equal(got, want) {
		t.Errorf("written = % 02X, want % 02X", got, want)
	}
}

func TestPtt_UnknownModeWritesOff(t *testing.T) {
	svc, conn, _ := connectService(t)
	defer svc.Stop()

	svc.Ptt(hdlc.PttMode(42))
	if got := conn.written(); !bytes.Equal(got, hdlc.Ptt(hdlc.PttOff)) {
		t.Errorf("written = % 02X, want PTT off sequence", got)
	}
}

func TestStop_SendsPttOffBeforeTeardown(t *testing.T) {
	svc, conn, sink := connectService(t)

	svc.Stop()

	if got := conn.written(); !bytes.Equal(got, hdlc.Ptt(hdlc.PttOff)) {
		t.Errorf("written = % 02X, want PTT off sequence", got)
	}
	if !conn.isClosed() {
		t.Error("conn not closed by stop")
	}
	if svc.State() != StateIdle {
		t.Errorf("state = %v, want idle", svc.State())
	}

	// An explicit stop is not a connection loss.
	time.Sleep(20 * time.Millisecond)
	if failures := sink.failureList(); len(failures) != 0 {
		t.Errorf("unexpected failures after stop: %v", failures)
	}
}

func TestFrameDispatch(t *testing.T) {
	svc, conn, sink := connectService(t)
	defer svc.Stop()

	// Input volume report: type 4, value 42.
	conn.inbox <- []byte{0xC0, 0x06, 0x04, 0x2A, 0xC0}
	// Unrecognized type falls through to the generic event.
	conn.inbox <- []byte{0xC0, 0x06, 0x63, 0x01, 0xC0}

	waitFor(t, func() bool { return sink.frameCount() == 2 }, "frame dispatch")

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.kinds[0] != EventInputVolume {
		t.Errorf("kind[0] = %v, want input_volume", sink.kinds[0])
	}
	if sink.frames[0].Value != 42 {
		t.Errorf("value = %d, want 42", sink.frames[0].Value)
	}
	if len(sink.frames[0].Payload) != 0 {
		t.Errorf("payload = %v, want empty", sink.frames[0].Payload)
	}
	if sink.kinds[1] != EventOther {
		t.Errorf("kind[1] = %v, want other", sink.kinds[1])
	}
}

func TestConnectionLost(t *testing.T) {
	svc, conn, sink := connectService(t)

	// The device side drops: the read loop must surface one failure and
	// return to idle without auto-reconnecting.
	conn.Close()

	waitFor(t, func() bool {
		failures := sink.failureList()
		return len(failures) == 1 && failures[0] == "Device connection was lost"
	}, "connection lost notification")

	if svc.State() != StateIdle {
		t.Errorf("state = %v, want idle", svc.State())
	}
	states := sink.stateList()
	if states[len(states)-1] != StateIdle {
		t.Errorf("final state event = %v, want idle", states[len(states)-1])
	}
}

func TestWriteFailure_DoesNotKillSession(t *testing.T) {
	svc, conn, sink := connectService(t)
	defer svc.Stop()

	conn.setFailWrites(true)
	svc.SetTxDelay(25)
	conn.setFailWrites(false)

	if svc.State() != StateConnected {
		t.Fatalf("state = %v, want connected after failed write", svc.State())
	}

	// The read loop is still alive and dispatching.
	conn.inbox <- []byte{0xC0, 0x06, 0x04, 0x10, 0xC0}
	waitFor(t, func() bool { return sink.frameCount() == 1 }, "dispatch after failed write")
}

func TestStart_CancelsEverything(t *testing.T) {
	svc, conn, _ := connectService(t)

	svc.Start()
	if svc.State() != StateIdle {
		t.Errorf("state = %v, want idle", svc.State())
	}
	if !conn.isClosed() {
		t.Error("session conn not closed by start")
	}

	// Idempotent.
	svc.Start()
	if svc.State() != StateIdle {
		t.Errorf("state = %v, want idle", svc.State())
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		frameType uint8
		want      EventKind
	}{
		{hdlc.FrameInputVolume, EventInputVolume},
		{hdlc.FrameOutputVolume, EventOutputVolume},
		{hdlc.FrameTxDelay, EventTxDelay},
		{hdlc.FramePersistence, EventPersistence},
		{hdlc.FrameSlotTime, EventSlotTime},
		{hdlc.FrameTxTail, EventTxTail},
		{hdlc.FrameDuplex, EventDuplex},
		{hdlc.FrameSquelchLevel, EventSquelchLevel},
		{hdlc.FrameHardwareVersion, EventHardwareVersion},
		{hdlc.FrameFirmwareVersion, EventFirmwareVersion},
		{hdlc.FrameVerbosity, EventVerbosity},
		{hdlc.FrameBatteryLevel, EventBatteryLevel},
		{hdlc.FrameInputAtten, EventInputAtten},
		{hdlc.FrameConnTrack, EventConnTrack},
		{0x63, EventOther},
	}

	for _, tt := range tests {
		if got := KindOf(tt.frameType); got != tt.want {
			t.Errorf("KindOf(%d) = %v, want %v", tt.frameType, got, tt.want)
		}
	}
}
