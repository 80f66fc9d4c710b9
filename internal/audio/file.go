// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "tuner/internal/log"
	"tuner/internal/tuner"
)

const wavFormatPCM = 1

// ErrUnsupportedFile is returned by FileSource.Start for input it cannot decode.
var ErrUnsupportedFile = errors.New("unsupported audio file")

// FileInfo describes a decoded WAV file.
type FileInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// FileSource replays a PCM WAV file as a sequence of analysis blocks: a
// window of window samples advanced by hop frames, as a live Stream would
// produce with frames_per_buffer set to hop. Channel 0 is analysed.
// The Blocks channel is closed at end of file.
type FileSource struct {
	path   string
	window int
	hop    int

	info   FileInfo
	blocks chan tuner.SampleBlock
	done   chan struct{}
	wg     sync.WaitGroup

	mu  sync.Mutex
	err error
}

// NewFileSource creates a source for the WAV file at path.
func NewFileSource(path string, window, hop int) *FileSource {
	return &FileSource{
		path:   path,
		window: window,
		hop:    max(1, hop),
	}
}

// Start opens and validates the file and begins decoding in the background.
func (f *FileSource) Start() error {
	if f.done != nil {
		return nil
	}

	file, err := os.Open(f.path)
	if err != nil {
		return err
	}

	dec := wav.NewDecoder(file)
	if !dec.IsValidFile() {
		file.Close()
		return fmt.Errorf("%w: %s is not a valid WAV file", ErrUnsupportedFile, f.path)
	}
	if dec.WavAudioFormat != wavFormatPCM {
		file.Close()
		return fmt.Errorf("%w: %s uses WAV format %d, only PCM is supported", ErrUnsupportedFile, f.path, dec.WavAudioFormat)
	}
	if audio.IntMaxSignedValue(int(dec.BitDepth)) == 0 {
		file.Close()
		return fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFile, dec.BitDepth)
	}
	if err := dec.FwdToPCM(); err != nil {
		file.Close()
		return fmt.Errorf("failed to locate PCM data: %w", err)
	}

	duration, _ := dec.Duration()
	f.info = FileInfo{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Duration:   duration,
	}
	f.setErr(nil)
	f.blocks = make(chan tuner.SampleBlock)
	f.done = make(chan struct{})

	applog.Infof("FileSource: %s (%d Hz, %d channels, %d-bit, %v)",
		f.path, f.info.SampleRate, f.info.Channels, f.info.BitDepth, duration.Round(time.Millisecond))

	f.wg.Add(1)
	go f.decode(dec, file, f.blocks, f.done)
	return nil
}

// Stop ends decoding, waits for the decoder goroutine and returns any
// decoding error.
func (f *FileSource) Stop() error {
	if f.done == nil {
		return nil
	}
	close(f.done)
	f.wg.Wait()
	f.done = nil
	return f.Err()
}

// Blocks returns the channel carrying decoded blocks.
func (f *FileSource) Blocks() <-chan tuner.SampleBlock {
	return f.blocks
}

// Info returns the format of the file opened by Start.
func (f *FileSource) Info() FileInfo {
	return f.info
}

// Err returns the error that ended decoding early, if any.
func (f *FileSource) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *FileSource) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *FileSource) decode(dec *wav.Decoder, file *os.File, blocks chan<- tuner.SampleBlock, done <-chan struct{}) {
	defer f.wg.Done()
	defer close(blocks)
	defer file.Close()

	channels := f.info.Channels
	scale := float64(audio.IntMaxSignedValue(f.info.BitDepth))
	offset := 0
	if f.info.BitDepth == 8 {
		offset = 128 // 8-bit WAV samples are unsigned.
	}

	pcm := &audio.IntBuffer{Data: make([]int, f.hop*channels)}
	samples := make([]float32, f.hop*channels)
	window := newSlidingWindow(f.window)

	// The channel is unbuffered, so one slot is with the consumer while the
	// other is filled.
	slots := [2][]float32{make([]float32, f.window), make([]float32, f.window)}
	next := 0
	emitted := 0

	for {
		n, err := dec.PCMBuffer(pcm)
		if err != nil {
			f.setErr(fmt.Errorf("failed to decode %s: %w", f.path, err))
			return
		}
		if n == 0 {
			applog.Debugf("FileSource: End of file after %d blocks", emitted)
			return
		}

		n -= n % channels
		for i, v := range pcm.Data[:n] {
			samples[i] = float32(float64(v-offset) / scale)
		}
		window.push(samples[:n], channels)
		if !window.primed() {
			continue
		}

		window.snapshot(slots[next])
		select {
		case blocks <- tuner.SampleBlock{Samples: slots[next], SampleRate: f.info.SampleRate}:
			next ^= 1
			emitted++
		case <-done:
			return
		}
	}
}
