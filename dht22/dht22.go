// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Opts holds the configuration options for the device.
type Opts struct {
	// BitThreshold separates a "0" high pulse (26-28µs) from a "1" pulse
	// (~70µs). A pulse of exactly this duration decodes as 1. Leave 0 to use
	// the default of 50µs.
	BitThreshold time.Duration
	// MinReadInterval is the minimum spacing between two transactions on
	// the same sensor. The sensor samples on a 2 second internal cycle and
	// stops answering when polled faster. Leave 0 to use the default of 2
	// seconds.
	MinReadInterval time.Duration
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	BitThreshold:    50 * time.Microsecond,
	MinReadInterval: 2 * time.Second,
}

// Dev represents a DHT22 sensor on a single GPIO pin.
//
// The data line is an exclusively driven hardware resource, so at most one
// transaction is in flight at a time; all entry points serialize on an
// internal mutex.
type Dev struct {
	p        gpio.PinIO
	opts     Opts
	mu       sync.Mutex
	lastRead time.Time
	shutdown chan struct{}
}

// New returns an object that communicates over a single GPIO pin to a DHT22
// sensor. It configures the pin as input with the pull-up holding the line
// high and performs no transaction; it is safe to call again on the same
// pin. The Opts can be nil.
func New(p gpio.PinIO, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.BitThreshold <= 0 {
		o.BitThreshold = DefaultOpts.BitThreshold
	}
	if o.MinReadInterval <= 0 {
		o.MinReadInterval = DefaultOpts.MinReadInterval
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("dht22: configuring %s: %w", p, err)
	}
	return &Dev{p: p, opts: o}, nil
}

// Sense queries the sensor for the current temperature and humidity with a
// single transaction attempt; the pressure is always 0. Single-wire reads
// over unshielded wiring are inherently noisy, so callers that cannot
// tolerate a failed cycle should use SenseRetry instead. If less than the
// minimum read interval has passed since the previous transaction, Sense
// first sleeps out the remainder.
//
// On failure e is left zeroed and the error identifies the phase that
// failed: LineBusyError, NoResponseError, BitTimeoutError,
// FrameIncompleteError, ChecksumMismatchError or OutOfRangeError.
func (d *Dev) Sense(e *physic.Env) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sense(e)
}

// SenseRetry is Sense with up to maxRetries additional attempts, spaced by
// the minimum read interval. It returns on the first success; after
// exhausting all attempts it returns the last failure so callers can tell a
// missing sensor from noisy wiring.
func (d *Dev) SenseRetry(e *physic.Env, maxRetries int) error {
	if maxRetries < 0 {
		return errors.New("dht22: maxRetries must not be negative")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = d.sense(e); err == nil {
			return nil
		}
	}
	return fmt.Errorf("dht22: all %d attempts failed: %w", maxRetries+1, err)
}

// sense runs one transaction. The caller holds d.mu.
func (d *Dev) sense(e *physic.Env) error {
	e.Temperature = 0
	e.Pressure = 0
	e.Humidity = 0

	if !d.lastRead.IsZero() {
		if wait := d.opts.MinReadInterval - now().Sub(d.lastRead); wait > 0 {
			sleep(wait)
		}
	}
	tx := transaction{pin: d.p}
	err := tx.run()
	d.lastRead = now()
	if err != nil {
		return err
	}
	return decodeBits(tx.highs[:], d.opts.BitThreshold).interpret(e)
}

// SenseContinuous returns a channel that can be read to return values from
// the sensor. The minimum value for interval is the minimum read interval
// (2 seconds by default). Failed cycles are skipped, not reported. To end
// the read, call Halt().
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < d.opts.MinReadInterval {
		return nil, fmt.Errorf("dht22: invalid interval, minimum is %s", d.opts.MinReadInterval)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shutdown != nil {
		return nil, errors.New("dht22: sense continuous already running")
	}

	d.shutdown = make(chan struct{})
	stop := d.shutdown
	ch := make(chan physic.Env, 16)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e := physic.Env{}
				if err := d.Sense(&e); err == nil {
					ch <- e
				}
			}
		}
	}()
	return ch, nil
}

// Halt interrupts a running SenseContinuous() operation.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shutdown != nil {
		close(d.shutdown)
		d.shutdown = nil
	}
	return nil
}

// Precision returns the resolution of the device for its measured
// parameters.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = physic.Celsius / 10
	e.Pressure = 0
	e.Humidity = physic.MilliRH
}

func (d *Dev) String() string {
	return fmt.Sprintf("dht22: %s", d.p)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
