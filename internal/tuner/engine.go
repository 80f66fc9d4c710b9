// SPDX-License-Identifier: MIT
/*
Package tuner turns a stream of sample blocks into tuner readings.

The Engine owns every piece of cross-cycle state (frequency and note
histories, smoothed cents, the listening flag). It is not safe for concurrent
use: exactly one goroutine may call ProcessBlock, Start and Stop. Run
provides that single consumer for a Source's block channel.
*/
package tuner

import (
	"errors"
	"fmt"
	"math"

	applog "tuner/internal/log"
	"tuner/internal/pitch"
)

var (
	// ErrCaptureUnavailable is returned by Start when the Source cannot be
	// acquired. The engine stays Idle; retrying is up to the caller.
	ErrCaptureUnavailable = errors.New("capture unavailable")

	// ErrInvalidSampleBlock is returned by ProcessBlock for malformed input.
	// Engine state is left untouched and the caller should skip the cycle.
	ErrInvalidSampleBlock = errors.New("invalid sample block")

	// ErrNotListening is returned by ProcessBlock and Run while Idle.
	ErrNotListening = errors.New("tuner is not listening")
)

// Source supplies sample blocks for a listening session. Blocks must not be
// delivered before Start or after Stop returns. A Source signals the end of
// its data by closing the Blocks channel.
type Source interface {
	Start() error
	Stop() error
	Blocks() <-chan SampleBlock
}

// State is the engine lifecycle state.
type State int

const (
	Idle State = iota
	Listening
)

func (s State) String() string {
	if s == Listening {
		return "listening"
	}
	return "idle"
}

// Params tunes the detection and smoothing stages.
type Params struct {
	NoiseFloor       float64 // RMS level below which a block counts as silence.
	FrequencyHistory int     // Estimates averaged into the displayed frequency.
	NoteHistory      int     // Note names voted on for the displayed note.
}

// DefaultParams returns the reference configuration.
func DefaultParams() Params {
	return Params{
		NoiseFloor:       pitch.DefaultNoiseFloor,
		FrequencyHistory: pitch.DefaultFrequencyHistory,
		NoteHistory:      pitch.DefaultNoteHistory,
	}
}

// Engine runs the pitch pipeline once per sample block.
type Engine struct {
	source    Source
	estimator *pitch.Autocorrelator
	smoother  *pitch.Smoother
	state     State
}

// NewEngine creates an Idle engine reading from source.
func NewEngine(source Source, params Params) *Engine {
	defaults := DefaultParams()
	if params.NoiseFloor <= 0 {
		params.NoiseFloor = defaults.NoiseFloor
	}
	if params.FrequencyHistory <= 0 {
		params.FrequencyHistory = defaults.FrequencyHistory
	}
	if params.NoteHistory <= 0 {
		params.NoteHistory = defaults.NoteHistory
	}

	return &Engine{
		source:    source,
		estimator: pitch.NewAutocorrelator(params.NoiseFloor),
		smoother:  pitch.NewSmoother(params.FrequencyHistory, params.NoteHistory),
		state:     Idle,
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Start acquires the source and moves Idle to Listening with empty state.
// Calling Start while Listening does nothing.
func (e *Engine) Start() error {
	if e.state == Listening {
		return nil
	}
	if e.source == nil {
		return fmt.Errorf("%w: no sample source configured", ErrCaptureUnavailable)
	}
	if err := e.source.Start(); err != nil {
		return fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
	}

	e.reset()
	e.state = Listening
	applog.Infof("Tuner: Listening")
	return nil
}

// Stop releases the source, clears all history and returns the neutral
// reading for the display. State is reset even if the source fails to stop.
func (e *Engine) Stop() (Reading, error) {
	var err error
	if e.state == Listening && e.source != nil {
		if serr := e.source.Stop(); serr != nil {
			err = fmt.Errorf("failed to stop sample source: %w", serr)
		}
	}

	e.reset()
	if e.state == Listening {
		applog.Infof("Tuner: Stopped")
	}
	e.state = Idle
	return silentReading(), err
}

// ProcessBlock runs detection, note mapping and smoothing for one block.
// A block without pitch is not an error: it clears the histories and yields
// an Absent reading.
func (e *Engine) ProcessBlock(block SampleBlock) (Reading, error) {
	if e.state != Listening {
		return silentReading(), ErrNotListening
	}
	if err := block.Validate(); err != nil {
		return silentReading(), err
	}

	freq, ok := e.estimator.Estimate(block.Samples, block.SampleRate)
	if !ok || math.IsNaN(freq) || math.IsInf(freq, 0) || freq <= 0 {
		e.smoother.Silence()
		return silentReading(), nil
	}

	reading := newReading(freq, e.smoother.Update(freq))
	if applog.Enabled(applog.LevelDebug) {
		applog.Debugf("Tuner: %.2f Hz (raw %.2f Hz) %s %+.1f cents", reading.Frequency, freq, reading.Note, reading.Cents)
	}
	return reading, nil
}

// reset clears histories and smoothed cents.
func (e *Engine) reset() {
	e.smoother.Reset()
}
