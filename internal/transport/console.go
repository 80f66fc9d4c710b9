// SPDX-License-Identifier: MIT
package transport

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"tuner/internal/tuner"
)

// ConsoleTransport writes one line per reading that changes what a display
// would show: the note, the tuning state or the cents rounded to a whole
// number. Each line is prefixed with the stream position, derived from the
// number of readings seen and the hop duration.
type ConsoleTransport struct {
	mu      sync.Mutex
	w       io.Writer
	hop     time.Duration
	count   int
	last    tuner.Reading
	started bool
}

// NewConsoleTransport creates a ConsoleTransport writing to w. hop is the
// time between consecutive readings; zero omits the position.
func NewConsoleTransport(w io.Writer, hop time.Duration) *ConsoleTransport {
	return &ConsoleTransport{w: w, hop: hop}
}

// Send writes r if it differs visibly from the previous reading. Other
// message types are ignored.
func (c *ConsoleTransport) Send(data any) error {
	r, ok := data.(tuner.Reading)
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	pos := time.Duration(c.count) * c.hop
	c.count++
	if c.started && sameDisplay(c.last, r) {
		return nil
	}
	c.last = r
	c.started = true

	var err error
	if c.hop > 0 {
		_, err = fmt.Fprintf(c.w, "%9s  %s\n", pos.Round(time.Millisecond), r)
	} else {
		_, err = fmt.Fprintln(c.w, r)
	}
	return err
}

// Close is a no-op; the writer belongs to the caller.
func (c *ConsoleTransport) Close() error {
	return nil
}

func sameDisplay(a, b tuner.Reading) bool {
	return a.Note == b.Note && a.State == b.State && math.Round(a.Cents) == math.Round(b.Cents)
}

var _ Transport = (*ConsoleTransport)(nil)
