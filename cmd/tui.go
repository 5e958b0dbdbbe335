// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 PacketForge

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/packetforge/tnclink/pkg/hdlc"
	"github.com/packetforge/tnclink/pkg/tnc"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive TUI for monitoring and tuning the TNC",
	Long: `Monitor and tune the TNC via an interactive terminal UI.

Shows connection state, live audio input level, battery voltage,
hardware/firmware versions and every KISS timing parameter, updating as
the TNC reports values.

Keys:
  m / s / b   key transmitter (mark / space / both)
  space       unkey transmitter
  r           refresh all values
  c           reconnect (when idle)
  q           quit

Supports both serial and WebSocket connections.`,
	RunE: runTui,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// Messages from the connection manager into the TUI event loop.
type (
	tncStateMsg   tnc.State
	tncDeviceMsg  string
	tncFailureMsg string
	tncFrameMsg   struct {
		kind  tnc.EventKind
		frame *hdlc.Frame
	}
	tickMsg time.Time
)

// teaSink forwards Service notifications into the bubbletea program
// through a buffered channel, so the Service never blocks on the UI.
type teaSink struct {
	ch chan tea.Msg
}

func newTeaSink() *teaSink {
	return &teaSink{ch: make(chan tea.Msg, 64)}
}

func (s *teaSink) forward(msg tea.Msg) {
	select {
	case s.ch <- msg:
	default:
		// UI is behind; drop rather than stall the read loop.
	}
}

func (s *teaSink) StateChanged(state tnc.State) { s.forward(tncStateMsg(state)) }
func (s *teaSink) DeviceIdentified(name string) { s.forward(tncDeviceMsg(name)) }
func (s *teaSink) Failure(msg string)           { s.forward(tncFailureMsg(msg)) }

func (s *teaSink) Frame(kind tnc.EventKind, f *hdlc.Frame) {
	s.forward(tncFrameMsg{kind: kind, frame: f})
}

// Styles
var (
	tuiTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	tuiLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(24)

	tuiValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	tuiStateStyles = map[tnc.State]lipgloss.Style{
		tnc.StateIdle:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		tnc.StateConnecting: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		tnc.StateConnected:  lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
	}

	tuiPttStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("160")).
			Padding(0, 1)

	tuiHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type tuiModel struct {
	svc    *tnc.Service
	dialer tnc.Dialer

	state       tnc.State
	device      string
	lastFailure string

	inputVol  uint8
	peakVol   uint8
	volume    progress.Model
	values    map[tnc.EventKind]string
	ptt       hdlc.PttMode
	frames    uint64
	startTime time.Time

	width    int
	quitting bool
}

func initialTuiModel(svc *tnc.Service, dialer tnc.Dialer) tuiModel {
	return tuiModel{
		svc:       svc,
		dialer:    dialer,
		state:     tnc.StateIdle,
		volume:    progress.New(progress.WithDefaultGradient()),
		values:    make(map[tnc.EventKind]string),
		ptt:       hdlc.PttOff,
		startTime: time.Now(),
	}
}

func tuiTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 30
		if w < 10 {
			w = 10
		}
		if w > 60 {
			w = 60
		}
		m.volume.Width = w
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.svc.Stop()
			return m, tea.Quit
		case "m":
			m.ptt = hdlc.PttMark
			m.svc.Ptt(hdlc.PttMark)
		case "s":
			m.ptt = hdlc.PttSpace
			m.svc.Ptt(hdlc.PttSpace)
		case "b":
			m.ptt = hdlc.PttBoth
			m.svc.Ptt(hdlc.PttBoth)
		case " ":
			m.ptt = hdlc.PttOff
			m.svc.Ptt(hdlc.PttOff)
		case "r":
			m.svc.GetAllValues()
			m.svc.GetOutputVolume()
		case "l":
			m.ptt = hdlc.PttOff
			m.svc.Listen()
		case "c":
			if m.state == tnc.StateIdle {
				m.lastFailure = ""
				m.svc.Connect(m.dialer)
			}
		}
		return m, nil

	case tncStateMsg:
		m.state = tnc.State(msg)
		if m.state != tnc.StateConnected {
			m.ptt = hdlc.PttOff
		}
		return m, nil

	case tncDeviceMsg:
		m.device = string(msg)
		return m, nil

	case tncFailureMsg:
		m.lastFailure = string(msg)
		return m, nil

	case tncFrameMsg:
		m.frames++
		if msg.kind == tnc.EventInputVolume {
			m.inputVol = msg.frame.Value
			if m.inputVol > m.peakVol {
				m.peakVol = m.inputVol
			}
		} else {
			m.values[msg.kind] = hdlc.FormatValue(msg.frame)
		}
		return m, nil

	case tickMsg:
		return m, tuiTick()
	}

	return m, nil
}

// tuiRows fixes the display order of reported values.
var tuiRows = []struct {
	label string
	kind  tnc.EventKind
}{
	{"Hardware version", tnc.EventHardwareVersion},
	{"Firmware version", tnc.EventFirmwareVersion},
	{"Battery", tnc.EventBatteryLevel},
	{"TX delay", tnc.EventTxDelay},
	{"Persistence", tnc.EventPersistence},
	{"Slot time", tnc.EventSlotTime},
	{"TX tail", tnc.EventTxTail},
	{"Duplex", tnc.EventDuplex},
	{"Squelch level", tnc.EventSquelchLevel},
	{"Output volume", tnc.EventOutputVolume},
	{"Input attenuation", tnc.EventInputAtten},
	{"Verbosity", tnc.EventVerbosity},
	{"BT connection tracking", tnc.EventConnTrack},
}

func (m tuiModel) View() string {
	if m.quitting {
		return "Disconnected.\n"
	}

	var sb strings.Builder

	sb.WriteString(tuiTitleStyle.Render("tnclink"))
	sb.WriteString("  ")
	sb.WriteString(tuiStateStyles[m.state].Render(m.state.String()))
	if m.device != "" {
		sb.WriteString("  " + tuiValueStyle.Render(m.device))
	}
	if m.ptt != hdlc.PttOff {
		sb.WriteString("  " + tuiPttStyle.Render("TX "+m.ptt.String()))
	}
	sb.WriteString("\n\n")

	sb.WriteString(tuiLabelStyle.Render("Input level:"))
	sb.WriteString(m.volume.ViewAs(float64(m.inputVol) / 255.0))
	sb.WriteString(fmt.Sprintf("  %3d (peak %3d)\n", m.inputVol, m.peakVol))

	for _, row := range tuiRows {
		sb.WriteString(tuiLabelStyle.Render(row.label + ":"))
		if v, ok := m.values[row.kind]; ok {
			sb.WriteString(tuiValueStyle.Render(v))
		} else {
			sb.WriteString(tuiHelpStyle.Render("-"))
		}
		sb.WriteByte('\n')
	}

	sb.WriteString(fmt.Sprintf("\n%d frames in %s\n",
		m.frames, time.Since(m.startTime).Round(time.Second)))

	if m.lastFailure != "" {
		sb.WriteString("\n" + tuiStateStyles[tnc.StateIdle].Render(m.lastFailure) + "\n")
	}

	sb.WriteString("\n" + tuiHelpStyle.Render(
		"m/s/b key TX · space unkey · r refresh · l listen · c reconnect · q quit"))
	sb.WriteString("\n")

	return sb.String()
}

func runTui(cmd *cobra.Command, args []string) error {
	dialer, err := newDialer()
	if err != nil {
		return err
	}

	sink := newTeaSink()
	svc := tnc.NewService(sink, logger)

	m := initialTuiModel(svc, dialer)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Pump Service notifications into the program.
	go func() {
		for msg := range sink.ch {
			p.Send(msg)
		}
	}()

	svc.Connect(dialer)

	if _, err := p.Run(); err != nil {
		svc.Stop()
		return fmt.Errorf("TUI error: %v", err)
	}
	svc.Stop()
	return nil
}
