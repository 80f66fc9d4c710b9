// SPDX-License-Identifier: MIT
package transport

import (
	applog "tuner/internal/log"
	"tuner/internal/tuner"
)

// LoggingTransport implements the Transport interface by logging readings
// at debug level.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Debugf("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received data.
func (lt *LoggingTransport) Send(data any) error {
	if !applog.Enabled(applog.LevelDebug) {
		return nil
	}
	switch v := data.(type) {
	case tuner.Reading:
		applog.Debugf("Reading: %s", v)
	default:
		applog.Debugf("Transport: Received (%T): %+v", data, data)
	}
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
