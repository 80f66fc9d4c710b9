// SPDX-License-Identifier: MIT

// Package tui provides the interactive input device and sample rate picker.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tuner/internal/audio"
)

// ErrCancelled is returned by Pick when the user quits without choosing.
var ErrCancelled = errors.New("device selection cancelled")

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Select: key.NewBinding(key.WithKeys("enter")),
	Back:   key.NewBinding(key.WithKeys("esc")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c")),
}

// ScreenType defines which screen is currently active.
type ScreenType int

const (
	DeviceScreen ScreenType = iota
	RateScreen
)

// Selection is the outcome of a completed pick.
type Selection struct {
	DeviceID   int
	DeviceName string
	SampleRate float64
}

type devicesMsg struct {
	devices []audio.Device
}

type ratesMsg struct {
	rates []float64
}

type errMsg struct {
	err error
}

// PickerModel is the Bubble Tea model that walks the user from an input
// device to one of the sample rates it supports.
type PickerModel struct {
	channels     int
	listDevices  func() ([]audio.Device, error)
	sampleRates  func(deviceID, channels int) ([]float64, error)
	devices      []audio.Device
	rates        []float64
	deviceIndex  int
	rateIndex    int
	activeScreen ScreenType
	viewport     viewport.Model
	ready        bool
	err          error
	selection    *Selection
}

// NewPickerModel creates a picker for capture streams of the given channel
// count, backed by the host's PortAudio devices.
func NewPickerModel(channels int) PickerModel {
	return PickerModel{
		channels:     channels,
		listDevices:  audio.HostDevices,
		sampleRates:  audio.SupportedSampleRates,
		activeScreen: DeviceScreen,
	}
}

// Selection returns the chosen device and rate, if the user made one.
func (m PickerModel) Selection() (Selection, bool) {
	if m.selection == nil {
		return Selection{}, false
	}
	return *m.selection, true
}

// Init fetches the device list.
func (m PickerModel) Init() tea.Cmd {
	return m.fetchDevices
}

func (m PickerModel) fetchDevices() tea.Msg {
	all, err := m.listDevices()
	if err != nil {
		return errMsg{err}
	}
	inputs := make([]audio.Device, 0, len(all))
	for _, d := range all {
		if d.MaxInputChannels >= m.channels {
			inputs = append(inputs, d)
		}
	}
	return devicesMsg{inputs}
}

func (m PickerModel) fetchRates(deviceID int) tea.Cmd {
	return func() tea.Msg {
		rates, err := m.sampleRates(deviceID, m.channels)
		if err != nil {
			return errMsg{err}
		}
		return ratesMsg{rates}
	}
}

// Update handles input and updates the model.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()

	case devicesMsg:
		m.devices = msg.devices
		m.deviceIndex = 0
		m.refresh()
		return m, nil

	case ratesMsg:
		m.rates = msg.rates
		m.rateIndex = 0
		device := m.devices[m.deviceIndex]
		for i, rate := range m.rates {
			if rate == device.DefaultSampleRate {
				m.rateIndex = i
				break
			}
		}
		m.activeScreen = RateScreen
		m.refresh()
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m PickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) || m.err != nil {
		return m, tea.Quit
	}

	switch m.activeScreen {
	case DeviceScreen:
		switch {
		case key.Matches(msg, keys.Up):
			if m.deviceIndex > 0 {
				m.deviceIndex--
			}
		case key.Matches(msg, keys.Down):
			if m.deviceIndex < len(m.devices)-1 {
				m.deviceIndex++
			}
		case key.Matches(msg, keys.Select):
			if len(m.devices) > 0 {
				return m, m.fetchRates(m.devices[m.deviceIndex].ID)
			}
		}

	case RateScreen:
		switch {
		case key.Matches(msg, keys.Back):
			m.activeScreen = DeviceScreen
		case key.Matches(msg, keys.Up):
			if m.rateIndex > 0 {
				m.rateIndex--
			}
		case key.Matches(msg, keys.Down):
			if m.rateIndex < len(m.rates)-1 {
				m.rateIndex++
			}
		case key.Matches(msg, keys.Select):
			if len(m.rates) > 0 {
				device := m.devices[m.deviceIndex]
				m.selection = &Selection{
					DeviceID:   device.ID,
					DeviceName: device.Name,
					SampleRate: m.rates[m.rateIndex],
				}
				return m, tea.Quit
			}
		}
	}

	m.refresh()
	return m, nil
}

func (m *PickerModel) refresh() {
	if !m.ready {
		return
	}
	if m.activeScreen == RateScreen {
		m.viewport.SetContent(m.renderRates())
		return
	}
	m.viewport.SetContent(m.renderDevices())
}

// View renders the UI.
func (m PickerModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress any key to exit.", m.err)
	}
	if !m.ready {
		return "Initializing..."
	}

	var title, help string
	if m.activeScreen == DeviceScreen {
		title = titleStyle.Render("Input Devices")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Choose • q: Quit")
	} else {
		title = titleStyle.Render("Sample Rate")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Start tuner • Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m PickerModel) renderDevices() string {
	if len(m.devices) == 0 {
		return "No input devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		info := fmt.Sprintf("[%d] %s (%s)\n", device.ID, device.Name, device.Type())
		info += fmt.Sprintf("    Input channels: %d, Default sample rate: %.0f Hz\n",
			device.MaxInputChannels, device.DefaultSampleRate)
		info += fmt.Sprintf("    Input latency: %v - %v\n",
			device.LowInputLatency, device.HighInputLatency)

		if i == m.deviceIndex {
			info = highlightStyle.Render(info)
		}
		sb.WriteString(info)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m PickerModel) renderRates() string {
	device := m.devices[m.deviceIndex]

	var sb strings.Builder
	fmt.Fprintf(&sb, "Device: %s\n\n", device.Name)
	if len(m.rates) == 0 {
		sb.WriteString("No supported sample rates. Press Esc to choose another device.\n")
		return sb.String()
	}

	for i, rate := range m.rates {
		marker := " "
		if i == m.rateIndex {
			marker = "▶"
		}
		line := fmt.Sprintf("  %s %.0f Hz\n", marker, rate)
		if i == m.rateIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// Pick runs the picker full screen and returns the user's choice.
func Pick(channels int) (Selection, error) {
	final, err := tea.NewProgram(NewPickerModel(channels), tea.WithAltScreen()).Run()
	if err != nil {
		return Selection{}, fmt.Errorf("device picker: %w", err)
	}
	m, ok := final.(PickerModel)
	if ok && m.err != nil {
		return Selection{}, m.err
	}
	if !ok {
		return Selection{}, ErrCancelled
	}
	sel, chosen := m.Selection()
	if !chosen {
		return Selection{}, ErrCancelled
	}
	return sel, nil
}
