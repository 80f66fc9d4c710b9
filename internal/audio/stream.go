// SPDX-License-Identifier: MIT
/*
Package audio supplies sample blocks to the tuner engine, either from a
live PortAudio capture (Stream) or from a WAV file (FileSource).

Live capture runs in PortAudio's callback thread:
  - The callback only copies samples into preallocated memory
  - Blocks are handed over through a bounded channel with a non-blocking send
  - A slow consumer causes dropped blocks, never unbounded queueing
*/
package audio

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"tuner/internal/config"
	applog "tuner/internal/log"
	"tuner/internal/tuner"
)

const (
	blockQueue = 2
	// A slot is free again once the consumer has moved past it: queued
	// blocks, the one being processed and the one being filled.
	blockSlots = blockQueue + 2
)

// openStreamFunc opens the PortAudio capture stream, replaced in tests.
var openStreamFunc = func(p portaudio.StreamParameters, callback func([]float32)) (paStream, error) {
	return portaudio.OpenStream(p, callback)
}

// paStream is the part of *portaudio.Stream used by Stream.
type paStream interface {
	Start() error
	Stop() error
	Close() error
}

// Stream captures live audio from a PortAudio input device and emits one
// SampleBlock of window_size samples per callback once the window is primed.
type Stream struct {
	cfg     config.AudioConfig
	window  *slidingWindow
	slots   [][]float32
	next    int
	blocks  chan tuner.SampleBlock
	stream  paStream
	dropped atomic.Uint64
}

// NewStream preallocates a capture stream for cfg. The device is opened by Start.
func NewStream(cfg config.AudioConfig) *Stream {
	slots := make([][]float32, blockSlots)
	for i := range slots {
		slots[i] = make([]float32, cfg.WindowSize)
	}

	return &Stream{
		cfg:    cfg,
		window: newSlidingWindow(cfg.WindowSize),
		slots:  slots,
		blocks: make(chan tuner.SampleBlock, blockQueue),
	}
}

// Blocks returns the channel carrying captured blocks.
func (s *Stream) Blocks() <-chan tuner.SampleBlock {
	return s.blocks
}

// Dropped returns the number of blocks discarded because the consumer lagged.
func (s *Stream) Dropped() uint64 {
	return s.dropped.Load()
}

// Start opens the configured input device and begins capture.
func (s *Stream) Start() error {
	if s.stream != nil {
		return nil
	}

	device, err := InputDevice(s.cfg.InputDevice)
	if err != nil {
		return err
	}
	if s.cfg.InputChannels > device.MaxInputChannels {
		return fmt.Errorf("device %s supports %d input channels, %d requested",
			device.Name, device.MaxInputChannels, s.cfg.InputChannels)
	}

	latency := device.DefaultHighInputLatency
	if s.cfg.LowLatency {
		latency = device.DefaultLowInputLatency
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: s.cfg.InputChannels,
			Device:   device,
			Latency:  latency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: s.cfg.FramesPerBuffer,
		SampleRate:      s.cfg.SampleRate,
	}

	s.drain()
	s.window.reset()
	s.dropped.Store(0)

	stream, err := openStreamFunc(params, s.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start input stream: %w", err)
	}
	s.stream = stream

	applog.Infof("Stream: Capturing from %s at %.0f Hz (%d frames/buffer, %d sample window, latency %v)",
		device.Name, s.cfg.SampleRate, s.cfg.FramesPerBuffer, s.cfg.WindowSize, latency.Round(time.Microsecond))
	return nil
}

// Stop halts capture and releases the device.
func (s *Stream) Stop() error {
	if s.stream == nil {
		return nil
	}

	stream := s.stream
	s.stream = nil

	if err := stream.Stop(); err != nil {
		stream.Close()
		return err
	}
	if err := stream.Close(); err != nil {
		return err
	}

	if n := s.Dropped(); n > 0 {
		applog.Warnf("Stream: %d blocks dropped while the tuner was busy", n)
	}
	applog.Infof("Stream: Stopped")
	return nil
}

// processInputStream is the PortAudio callback.
// Performance Critical:
// - Uses pre-allocated buffers only
// - Never blocks on the consumer
func (s *Stream) processInputStream(in []float32) {
	s.window.push(in, s.cfg.InputChannels)
	if !s.window.primed() {
		return
	}

	slot := s.slots[s.next]
	s.window.snapshot(slot)

	select {
	case s.blocks <- tuner.SampleBlock{Samples: slot, SampleRate: int(s.cfg.SampleRate)}:
		s.next = (s.next + 1) % len(s.slots)
	default:
		s.dropped.Add(1)
	}
}

// drain discards blocks left over from a previous session.
func (s *Stream) drain() {
	for {
		select {
		case <-s.blocks:
		default:
			return
		}
	}
}
