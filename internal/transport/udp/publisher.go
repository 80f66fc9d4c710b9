// SPDX-License-Identifier: MIT
package udp

import (
	"fmt"
	"sync"
	"time"

	applog "tuner/internal/log"
	"tuner/internal/transport"
	"tuner/internal/tuner"
)

// packetSender is the part of UDPSender used by the publisher.
type packetSender interface {
	Send(data []byte) error
	Close() error
}

// UDPPublisher keeps the latest tuner Reading and sends it as a fixed-size
// binary packet at a steady interval, independent of the analysis rate.
// It runs in a separate goroutine managed by Start and Stop methods.
type UDPPublisher struct {
	sender   packetSender  // The underlying UDP sender instance.
	interval time.Duration // The interval at which packets are sent.
	now      func() time.Time

	ticker   *time.Ticker   // Ticker that triggers packet sending.
	doneChan chan struct{}  // Channel used to signal the publisher goroutine to stop.
	wg       sync.WaitGroup // Waits for the publisher goroutine to finish during Stop.
	mu       sync.Mutex     // Protects ticker and doneChan during Start/Stop.

	latestMu sync.Mutex
	latest   tuner.Reading

	sequenceNum  uint32 // Monotonically increasing sequence number for packets.
	packetBuffer []byte // Reusable buffer for constructing the binary packet.
}

// NewUDPPublisher creates and initializes a new UDPPublisher.
// If the provided interval is invalid (<= 0), it defaults to 16ms (~60Hz).
func NewUDPPublisher(interval time.Duration, sender packetSender) (*UDPPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}

	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}
	applog.Infof("UDPPublisher: Initializing (Interval: %s)", interval)

	return &UDPPublisher{
		sender:       sender,
		interval:     interval,
		now:          time.Now,
		latest:       tuner.Reading{State: tuner.Absent},
		packetBuffer: make([]byte, 0, PacketSize),
	}, nil
}

// Send records data as the latest reading if it is a tuner.Reading.
func (p *UDPPublisher) Send(data any) error {
	r, ok := data.(tuner.Reading)
	if !ok {
		return nil
	}
	p.latestMu.Lock()
	p.latest = r
	p.latestMu.Unlock()
	return nil
}

// Start begins the periodic publishing process.
// It is safe to call Start multiple times; subsequent calls are no-ops if already started.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})

	// Capture locals so the goroutine never reads p.ticker/p.doneChan.
	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Debugf("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to terminate and waits for it to exit.
// It is safe to call Stop multiple times; subsequent calls are no-ops.
func (p *UDPPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	close(p.doneChan)
	p.ticker.Stop()
	p.ticker = nil
	p.mu.Unlock()

	p.wg.Wait()
	applog.Debugf("UDPPublisher: Stopped after %d packets", p.sequenceNum)
	return nil
}

// buildAndSendPacket packs the latest reading and sends it. The same reading
// is resent on every tick until a new one arrives.
func (p *UDPPublisher) buildAndSendPacket() {
	p.latestMu.Lock()
	r := p.latest
	p.latestMu.Unlock()

	p.sequenceNum++
	pkt := packetFromReading(p.sequenceNum, p.now().UnixNano(), r)
	p.packetBuffer = AppendPacket(p.packetBuffer[:0], pkt)

	err := p.sender.Send(p.packetBuffer)
	if !applog.Enabled(applog.LevelDebug) {
		return
	}
	if err != nil {
		applog.Debugf("UDPPublisher: Error sending packet %d: %v", p.sequenceNum, err)
		return
	}
	applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, len(p.packetBuffer))
}

// Close stops the publisher and closes the sender.
func (p *UDPPublisher) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}
	return p.sender.Close()
}

// Ensure UDPPublisher satisfies the Transport interface at compile time.
var _ transport.Transport = (*UDPPublisher)(nil)
