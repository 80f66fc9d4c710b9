// SPDX-License-Identifier: MIT
package tuner

import (
	"context"
	"errors"

	applog "tuner/internal/log"
)

// Run drains the source's blocks on the calling goroutine, publishing one
// Reading per block. Invalid blocks are skipped. Run returns nil when the
// source closes its channel and ctx.Err() on cancellation; call Stop only
// after Run has returned.
func (e *Engine) Run(ctx context.Context, publish func(Reading)) error {
	if e.state != Listening {
		return ErrNotListening
	}

	blocks := e.source.Blocks()
	skipped := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case block, ok := <-blocks:
			if !ok {
				applog.Debugf("Tuner: Source exhausted (%d invalid blocks skipped)", skipped)
				return nil
			}

			reading, err := e.ProcessBlock(block)
			if errors.Is(err, ErrInvalidSampleBlock) {
				skipped++
				applog.Warnf("Tuner: Skipping block: %v", err)
				continue
			}
			if err != nil {
				return err
			}

			if publish != nil {
				publish(reading)
			}
		}
	}
}
