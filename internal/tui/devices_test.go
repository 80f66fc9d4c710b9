// SPDX-License-Identifier: MIT
package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"tuner/internal/audio"
)

var testDevices = []audio.Device{
	{ID: 0, Name: "Built-in Microphone", MaxInputChannels: 1, DefaultSampleRate: 48000},
	{ID: 1, Name: "Built-in Output", MaxOutputChannels: 2, DefaultSampleRate: 48000},
	{ID: 2, Name: "USB Interface", MaxInputChannels: 2, MaxOutputChannels: 2, DefaultSampleRate: 44100},
}

func newTestPicker(t *testing.T) PickerModel {
	t.Helper()
	m := NewPickerModel(1)
	m.listDevices = func() ([]audio.Device, error) { return testDevices, nil }
	m.sampleRates = func(deviceID, channels int) ([]float64, error) {
		if channels != 1 {
			t.Errorf("sampleRates channels = %d, want 1", channels)
		}
		return []float64{32000, 44100, 48000}, nil
	}
	return m
}

// step applies msg and runs any returned command, feeding its message back
// in unless it quits.
func step(t *testing.T, m PickerModel, msg tea.Msg) (PickerModel, bool) {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(PickerModel)
	if cmd == nil {
		return m, false
	}
	out := cmd()
	if _, ok := out.(tea.QuitMsg); ok {
		return m, true
	}
	next, _ = m.Update(out)
	return next.(PickerModel), false
}

func keyMsg(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runeMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func loadedPicker(t *testing.T) PickerModel {
	t.Helper()
	m := newTestPicker(t)
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = step(t, m, m.Init()())
	return m
}

func TestPickerListsInputDevicesOnly(t *testing.T) {
	m := loadedPicker(t)

	if len(m.devices) != 2 {
		t.Fatalf("devices = %d, want 2", len(m.devices))
	}
	for _, d := range m.devices {
		if d.MaxInputChannels == 0 {
			t.Errorf("output-only device %q listed", d.Name)
		}
	}
	view := m.View()
	if !strings.Contains(view, "Built-in Microphone") || strings.Contains(view, "Built-in Output") {
		t.Errorf("unexpected device view:\n%s", view)
	}
}

func TestPickerSelectsDeviceAndRate(t *testing.T) {
	m := loadedPicker(t)

	m, _ = step(t, m, keyMsg(tea.KeyDown))
	if m.deviceIndex != 1 {
		t.Fatalf("deviceIndex = %d, want 1", m.deviceIndex)
	}
	m, _ = step(t, m, keyMsg(tea.KeyDown))
	if m.deviceIndex != 1 {
		t.Fatalf("deviceIndex moved past the end: %d", m.deviceIndex)
	}

	m, quit := step(t, m, keyMsg(tea.KeyEnter))
	if quit {
		t.Fatal("picker quit on device selection")
	}
	if m.activeScreen != RateScreen {
		t.Fatalf("activeScreen = %v, want RateScreen", m.activeScreen)
	}
	// USB Interface defaults to 44100, the second offered rate.
	if m.rateIndex != 1 {
		t.Errorf("rateIndex = %d, want 1", m.rateIndex)
	}

	m, _ = step(t, m, keyMsg(tea.KeyDown))
	m, quit = step(t, m, keyMsg(tea.KeyEnter))
	if !quit {
		t.Fatal("picker did not quit after rate selection")
	}

	sel, ok := m.Selection()
	if !ok {
		t.Fatal("no selection recorded")
	}
	want := Selection{DeviceID: 2, DeviceName: "USB Interface", SampleRate: 48000}
	if sel != want {
		t.Errorf("Selection() = %+v, want %+v", sel, want)
	}
}

func TestPickerBackReturnsToDevices(t *testing.T) {
	m := loadedPicker(t)
	m, _ = step(t, m, keyMsg(tea.KeyEnter))
	m, _ = step(t, m, keyMsg(tea.KeyEsc))

	if m.activeScreen != DeviceScreen {
		t.Errorf("activeScreen = %v, want DeviceScreen", m.activeScreen)
	}
	if _, ok := m.Selection(); ok {
		t.Error("selection recorded without choosing a rate")
	}
}

func TestPickerQuit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"q", runeMsg('q')},
		{"ctrl+c", keyMsg(tea.KeyCtrlC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadedPicker(t)
			m, quit := step(t, m, tt.msg)
			if !quit {
				t.Fatal("picker did not quit")
			}
			if _, ok := m.Selection(); ok {
				t.Error("cancelled picker reported a selection")
			}
		})
	}
}

func TestPickerDeviceError(t *testing.T) {
	wantErr := errors.New("host unavailable")
	m := NewPickerModel(1)
	m.listDevices = func() ([]audio.Device, error) { return nil, wantErr }

	m, _ = step(t, m, m.Init()())
	if !errors.Is(m.err, wantErr) {
		t.Fatalf("err = %v, want %v", m.err, wantErr)
	}
	if !strings.Contains(m.View(), "host unavailable") {
		t.Errorf("error not rendered: %q", m.View())
	}
	if _, quit := step(t, m, runeMsg('x')); !quit {
		t.Error("any key should exit after an error")
	}
}

func TestPickerNoDevices(t *testing.T) {
	m := NewPickerModel(1)
	m.listDevices = func() ([]audio.Device, error) { return nil, nil }
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = step(t, m, m.Init()())

	if !strings.Contains(m.View(), "No input devices found.") {
		t.Errorf("View() = %q", m.View())
	}
	if m, quit := step(t, m, keyMsg(tea.KeyEnter)); quit || m.activeScreen != DeviceScreen {
		t.Error("enter with no devices should do nothing")
	}
}

func TestPickerViewBeforeResize(t *testing.T) {
	if got := NewPickerModel(1).View(); got != "Initializing..." {
		t.Errorf("View() = %q, want Initializing...", got)
	}
}
