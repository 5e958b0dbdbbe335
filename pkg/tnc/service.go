// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 PacketForge

package tnc

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/packetforge/tnclink/pkg/hdlc"
)

// Failure messages surfaced through the Sink.
const (
	msgConnectFailed  = "Unable to connect device"
	msgConnectionLost = "Device connection was lost"
)

// Service manages the connection lifecycle to one TNC: at most one
// in-flight connect attempt and one active session at a time. All
// state and task-handle access is serialized by a single mutex; command
// methods snapshot the session under the lock and perform the write
// after releasing it, so a slow transport can never block a state
// transition.
type Service struct {
	mu         sync.Mutex
	state      State
	sink       Sink
	log        *zap.Logger
	connectGen uint64             // invalidates superseded connect attempts
	cancelDial context.CancelFunc // cancels the in-flight dial, if any
	session    *session
}

// NewService creates a Service delivering notifications to sink.
// A nil logger disables logging.
func NewService(sink Sink, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		state: StateIdle,
		sink:  sink,
		log:   log,
	}
}

// State returns the current connection state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start resets the service: any connect attempt or active session is
// cancelled and the state forced to idle. Idempotent.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Debug("start")
	s.cancelTasksLocked()
	s.setStateLocked(StateIdle)
}

// Connect initiates an asynchronous connection to the device behind d.
// Any previous connect attempt or session is cancelled first; only the
// latest attempt can reach the connected state.
func (s *Service) Connect(d Dialer) {
	s.mu.Lock()
	s.log.Debug("connect", zap.String("target", d.Name()))
	s.cancelTasksLocked()

	gen := s.connectGen
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelDial = cancel
	s.setStateLocked(StateConnecting)
	s.mu.Unlock()

	go s.runConnect(ctx, gen, d)
}

// Stop tears the connection down. While connected it first sends a
// best-effort PTT off so a dropped link never leaves the transmitter
// keyed, then cancels all tasks and returns to idle.
func (s *Service) Stop() {
	s.mu.Lock()
	s.log.Debug("stop")
	if s.state == StateConnected && s.session != nil {
		sess := s.session
		s.mu.Unlock()
		if err := sess.write(hdlc.Ptt(hdlc.PttOff)); err != nil {
			s.log.Warn("ptt off on stop failed", zap.Error(err))
		}
		s.mu.Lock()
	}
	s.cancelTasksLocked()
	s.setStateLocked(StateIdle)
	s.mu.Unlock()
}

// cancelTasksLocked cancels the in-flight connect attempt and the
// active session. Callers must hold s.mu. Bumping the generation makes
// a dial that completes later detect it has been superseded.
func (s *Service) cancelTasksLocked() {
	s.connectGen++
	if s.cancelDial != nil {
		s.cancelDial()
		s.cancelDial = nil
	}
	if s.session != nil {
		s.session.conn.Close()
		s.session = nil
	}
}

// setStateLocked transitions the connection state and notifies the
// sink. Callers must hold s.mu.
func (s *Service) setStateLocked(state State) {
	if s.state == state {
		return
	}
	s.log.Debug("state change",
		zap.Stringer("from", s.state),
		zap.Stringer("to", state))
	s.state = state
	s.sink.StateChanged(state)
}

// runConnect performs one dial attempt. It runs outside the lock; the
// generation check decides whether its outcome still matters.
func (s *Service) runConnect(ctx context.Context, gen uint64, d Dialer) {
	conn, err := d.Dial(ctx)

	s.mu.Lock()
	if gen != s.connectGen {
		// Superseded by a newer connect or a stop. Discard quietly.
		s.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	s.cancelDial = nil

	if err != nil {
		s.log.Info("connect failed", zap.String("target", d.Name()), zap.Error(err))
		s.setStateLocked(StateIdle)
		s.mu.Unlock()
		s.sink.Failure(msgConnectFailed)
		return
	}

	sess := &session{svc: s, conn: conn, name: d.Name()}
	s.session = sess
	s.setStateLocked(StateConnected)
	s.mu.Unlock()

	s.log.Info("connected", zap.String("device", d.Name()))
	s.sink.DeviceIdentified(d.Name())
	go sess.run()

	// Resynchronize with the hardware: unkey and start level streaming.
	s.Listen()
}

// sessionEnded handles a session whose read loop has terminated. If the
// session was already cancelled or superseded this is ordinary teardown
// and nothing is reported.
func (s *Service) sessionEnded(sess *session, readErr error) {
	s.mu.Lock()
	if s.session != sess {
		s.mu.Unlock()
		return
	}
	s.log.Info("connection lost", zap.String("device", sess.name), zap.Error(readErr))
	s.session = nil
	s.setStateLocked(StateIdle)
	s.mu.Unlock()
	s.sink.Failure(msgConnectionLost)
}

// dispatch routes one decoded frame to the sink.
func (s *Service) dispatch(f *hdlc.Frame) {
	kind := KindOf(f.Type)
	s.log.Debug("frame",
		zap.Stringer("kind", kind),
		zap.Uint8("type", f.Type),
		zap.Uint8("value", f.Value),
		zap.Int("payload", len(f.Payload)))
	s.sink.Frame(kind, f)
}

// currentSession snapshots the session handle, or nil unless connected.
func (s *Service) currentSession() *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected {
		return nil
	}
	return s.session
}

// send writes a command through the current session. Outside the
// connected state it is a silent no-op; a failed write is logged but
// never tears the session down.
func (s *Service) send(name string, cmd []byte) {
	sess := s.currentSession()
	if sess == nil {
		s.log.Debug("command dropped, not connected", zap.String("cmd", name))
		return
	}
	s.log.Debug("send", zap.String("cmd", name), zap.Int("len", len(cmd)))
	if err := sess.write(cmd); err != nil {
		s.log.Warn("write failed", zap.String("cmd", name), zap.Error(err))
	}
}

// SetTxDelay sets the transmitter keyup delay.
func (s *Service) SetTxDelay(v uint8) { s.send("tx_delay", hdlc.SetTxDelay(v)) }

// SetPersistence sets the CSMA persistence parameter.
func (s *Service) SetPersistence(v uint8) { s.send("persistence", hdlc.SetPersistence(v)) }

// SetSlotTime sets the CSMA slot interval.
func (s *Service) SetSlotTime(v uint8) { s.send("slot_time", hdlc.SetSlotTime(v)) }

// SetTxTail sets the post-transmission hold time.
func (s *Service) SetTxTail(v uint8) { s.send("tx_tail", hdlc.SetTxTail(v)) }

// SetDuplex enables or disables full-duplex operation.
func (s *Service) SetDuplex(on bool) { s.send("duplex", hdlc.SetDuplex(on)) }

// SetConnTrack enables or disables Bluetooth connection tracking.
func (s *Service) SetConnTrack(on bool) { s.send("conn_track", hdlc.SetConnTrack(on)) }

// SetVerbosity enables or disables verbose hardware output.
func (s *Service) SetVerbosity(on bool) { s.send("verbosity", hdlc.SetVerbosity(on)) }

// SetInputAtten enables or disables the audio input attenuator.
func (s *Service) SetInputAtten(on bool) { s.send("input_atten", hdlc.SetInputAtten(on)) }

// SetDcd enables or disables data carrier detect.
func (s *Service) SetDcd(on bool) { s.send("dcd", hdlc.SetDcd(on)) }

// SetSquelch sets the squelch level.
func (s *Service) SetSquelch(v uint8) { s.send("squelch", hdlc.SetSquelch(v)) }

// SetOutputVolume sets the audio output level.
func (s *Service) SetOutputVolume(v uint8) { s.send("output_volume", hdlc.SetOutputVolume(v)) }

// Ptt keys or unkeys the transmitter.
func (s *Service) Ptt(mode hdlc.PttMode) { s.send("ptt_"+mode.String(), hdlc.Ptt(mode)) }

// StreamVolume asks the TNC to stream audio input level frames.
func (s *Service) StreamVolume() { s.send("stream_volume", hdlc.StreamVolume()) }

// GetOutputVolume queries the current audio output level.
func (s *Service) GetOutputVolume() { s.send("get_output_volume", hdlc.GetOutputVolume()) }

// GetAllValues asks the TNC to report every configurable value.
func (s *Service) GetAllValues() { s.send("get_all_values", hdlc.GetAllValues()) }

// Write sends arbitrary raw bytes through the current session. Like the
// command methods it is a no-op unless connected.
func (s *Service) Write(out []byte) { s.send("raw", out) }

// Listen puts the hardware into a known listening state: transmitter
// unkeyed, audio input level streaming.
func (s *Service) Listen() {
	sess := s.currentSession()
	if sess == nil {
		return
	}
	s.log.Debug("listen")
	if err := sess.write(hdlc.Ptt(hdlc.PttOff)); err != nil {
		s.log.Warn("write failed", zap.String("cmd", "ptt_off"), zap.Error(err))
		return
	}
	if err := sess.write(hdlc.StreamVolume()); err != nil {
		s.log.Warn("write failed", zap.String("cmd", "stream_volume"), zap.Error(err))
	}
}

// session is one connected transfer task. It owns its Conn; closing the
// Conn is how the session is cancelled.
type session struct {
	svc  *Service
	conn Conn
	name string
}

func (sess *session) write(p []byte) error {
	_, err := sess.conn.Write(p)
	return err
}

// run is the session read loop: read bytes, feed the decoder, dispatch
// completed frames. Framing errors are recoverable and only logged. A
// read error ends the loop; whether that is a fault or an ordinary
// cancellation is decided by sessionEnded.
func (sess *session) run() {
	svc := sess.svc
	decoder := hdlc.NewDecoder()
	buf := make([]byte, 128)

	for {
		n, err := sess.conn.Read(buf)
		for i := 0; i < n; i++ {
			frame, derr := decoder.Process(buf[i])
			if derr != nil {
				svc.log.Debug("framing error", zap.Error(derr))
				continue
			}
			if frame != nil {
				svc.dispatch(frame)
			}
		}
		if err != nil {
			svc.sessionEnded(sess, err)
			return
		}
	}
}
