// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 PacketForge

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"

	"github.com/packetforge/tnclink/pkg/tnc"
)

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = fmt.Errorf("websocket connection closed")

// serialConn wraps a serial port as a tnc.Conn
type serialConn struct {
	port serial.Port
}

func (s *serialConn) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *serialConn) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *serialConn) Close() error {
	return s.port.Close()
}

// wsConn adapts a WebSocket connection to byte-stream reads. Binary
// messages are buffered and drained a chunk at a time.
type wsConn struct {
	conn      *websocket.Conn
	buf       []byte
	bufOffset int
	closed    bool // set once a read has failed
}

func (w *wsConn) Read(p []byte) (int, error) {
	if w.closed {
		return 0, ErrConnectionClosed
	}

	// Drain buffered bytes from the previous message first.
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed = true
			return 0, err
		}
		// The TNC byte stream only travels in binary messages.
		if messageType != websocket.BinaryMessage {
			continue
		}
		w.buf = data
		w.bufOffset = copy(p, data)
		return w.bufOffset, nil
	}
}

func (w *wsConn) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsConn) Close() error {
	return w.conn.Close()
}

// openSerial opens the serial port named by the --port flag.
func openSerial(portName string, baudRate int) (tnc.Conn, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %v", portName, err)
	}

	return &serialConn{port: port}, nil
}

// openWebSocket dials a WebSocket endpoint with HTTP Basic auth.
func openWebSocket(ctx context.Context, wsURL, username, password string, skipSSLVerify bool) (tnc.Conn, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(dialCtx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %v", err)
	}

	return &wsConn{conn: conn}, nil
}

// getPassword retrieves the WebSocket password from the environment or
// prompts for it without echo.
func getPassword() (string, error) {
	if pw := os.Getenv("TNCLINK_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// newDialer builds a tnc.Dialer from the connection flags. The password
// prompt, if needed, happens here rather than inside Dial so that a
// reconnect never blocks on the terminal.
func newDialer() (tnc.Dialer, error) {
	if wsURL != "" {
		password := ""
		if wsUsername != "" {
			var err error
			password, err = getPassword()
			if err != nil {
				return nil, err
			}
		}
		return tnc.DialerFunc{
			Target: wsURL,
			Fn: func(ctx context.Context) (tnc.Conn, error) {
				return openWebSocket(ctx, wsURL, wsUsername, password, wsNoSSLVerify)
			},
		}, nil
	}

	if portName != "" {
		return tnc.DialerFunc{
			Target: fmt.Sprintf("%s @ %d baud", portName, baudRate),
			Fn: func(ctx context.Context) (tnc.Conn, error) {
				return openSerial(portName, baudRate)
			},
		}, nil
	}

	return nil, fmt.Errorf("either --port or --url must be specified")
}

// openConnection opens the byte channel directly, for commands that do
// their own read/write without the connection manager.
func openConnection() (tnc.Conn, string, error) {
	d, err := newDialer()
	if err != nil {
		return nil, "", err
	}
	conn, err := d.Dial(context.Background())
	if err != nil {
		return nil, "", err
	}
	return conn, d.Name(), nil
}
