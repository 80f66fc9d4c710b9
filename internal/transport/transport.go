// SPDX-License-Identifier: MIT
/*
Package transport delivers tuner readings to renderers. Every transport
receives each published Reading through Send; implementations must not
block the engine loop for long and must be safe for concurrent use.
*/
package transport

import (
	"errors"

	applog "tuner/internal/log"
)

// Transport defines a generic interface for sending processed data or events.
type Transport interface {
	Send(data any) error
	Close() error
}

// Fanout sends every message to all of its transports.
type Fanout struct {
	transports []Transport
}

// NewFanout creates a Fanout over transports, skipping nil entries.
func NewFanout(transports ...Transport) *Fanout {
	f := &Fanout{}
	for _, t := range transports {
		if t != nil {
			f.transports = append(f.transports, t)
		}
	}
	return f
}

// Send delivers data to every transport. A failing transport does not stop
// delivery to the others; all errors are returned joined.
func (f *Fanout) Send(data any) error {
	var errs []error
	for _, t := range f.transports {
		if err := t.Send(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Publish is Send for callers that cannot handle errors, such as the engine
// loop's publish callback. Failures are logged at debug level.
func (f *Fanout) Publish(data any) {
	if err := f.Send(data); err != nil {
		applog.Debugf("Transport: Send failed: %v", err)
	}
}

// Close closes every transport and returns all errors joined.
func (f *Fanout) Close() error {
	var errs []error
	for _, t := range f.transports {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = (*Fanout)(nil)
