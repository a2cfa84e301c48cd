// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Datasheet timings for the AM2302 single-wire protocol. The firmware this
// driver replaces never measured them on hardware, so these are the
// datasheet nominals; the 0/1 pulse threshold is configurable through Opts.
const (
	// Host start signal: hold the line low for at least 1ms, then release
	// and let the pull-up raise it.
	resetPulse = 1200 * time.Microsecond

	// The sensor pulls the line low 20-40µs after the release.
	responseTimeout = 100 * time.Microsecond

	// Handshake: the sensor holds low for ~80µs, then high for ~80µs.
	handshakeTimeout = 200 * time.Microsecond

	// Each bit is a ~50µs low start marker followed by a high phase of
	// 26-28µs for a 0 or ~70µs for a 1. Both phases share one timeout, so a
	// whole bit window is bounded by twice this value.
	bitPhaseTimeout = 100 * time.Microsecond

	// The longest legitimate frame (all 1 bits) is about 5ms. A capture
	// still short of 40 bits past this deadline is abandoned.
	frameTimeout = 6 * time.Millisecond

	frameBits = 40
)

// Clock hooks, substituted by tests to run the protocol against simulated
// time.
var (
	now   = time.Now
	sleep = time.Sleep
)

// txPhase is where in the protocol a transaction currently is. Each phase
// has its own timeout and its own failure kind.
type txPhase int

const (
	phaseIdle txPhase = iota
	phaseReset
	phaseHandshake
	phaseCapture
	phaseDone
)

// transaction is one complete read attempt. It owns the pin for its whole
// lifetime and restores it to input with pull-up on every exit path,
// timeouts included, so the line is never left driven.
type transaction struct {
	pin   gpio.PinIO
	phase txPhase
	highs [frameBits]time.Duration
}

// run executes the phases in order and stops at the first failure. Worst
// case duration is bounded by the per-phase timeouts at roughly 10ms.
func (t *transaction) run() error {
	defer func() {
		_ = t.pin.In(gpio.PullUp, gpio.NoEdge)
	}()
	for _, step := range []func() error{t.idle, t.reset, t.handshake, t.capture} {
		if err := step(); err != nil {
			return err
		}
	}
	t.phase = phaseDone
	return nil
}

// idle verifies the pull-up is holding the line high before driving it.
func (t *transaction) idle() error {
	t.phase = phaseIdle
	if err := t.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return err
	}
	if t.pin.Read() != gpio.High {
		return &LineBusyError{}
	}
	return nil
}

// reset sends the host start signal and releases the line.
func (t *transaction) reset() error {
	t.phase = phaseReset
	if err := t.pin.Out(gpio.Low); err != nil {
		return err
	}
	sleep(resetPulse)
	return t.pin.In(gpio.PullUp, gpio.NoEdge)
}

// handshake waits out the sensor's low-then-high acknowledgment.
func (t *transaction) handshake() error {
	t.phase = phaseHandshake
	if _, err := t.waitLevel(gpio.Low, responseTimeout); err != nil {
		return &NoResponseError{}
	}
	if _, err := t.waitLevel(gpio.High, handshakeTimeout); err != nil {
		return &NoResponseError{}
	}
	return nil
}

// capture times the high phase of all 40 bit windows. A missing transition
// within a bit window is a BitTimeoutError; a capture that is still short
// of 40 bits when the whole-frame deadline expires is a
// FrameIncompleteError.
func (t *transaction) capture() error {
	t.phase = phaseCapture
	deadline := now().Add(frameTimeout)
	for bit := 0; bit < frameBits; bit++ {
		if now().After(deadline) {
			return &FrameIncompleteError{Bits: bit}
		}
		if _, err := t.waitLevel(gpio.Low, bitPhaseTimeout); err != nil {
			return &BitTimeoutError{Bit: bit}
		}
		if _, err := t.waitLevel(gpio.High, bitPhaseTimeout); err != nil {
			return &BitTimeoutError{Bit: bit}
		}
		high, err := t.waitLevel(gpio.Low, bitPhaseTimeout)
		if err != nil {
			return &BitTimeoutError{Bit: bit}
		}
		t.highs[bit] = high
	}
	return nil
}

var errLevelTimeout = errors.New("timed out waiting for level")

// waitLevel busy-polls the line until it reads l and returns how long that
// took. The pulse widths are a few tens of microseconds, too short for
// WaitForEdge on most hosts, so the wait is a tight read loop against the
// monotonic clock.
func (t *transaction) waitLevel(l gpio.Level, timeout time.Duration) (time.Duration, error) {
	start := now()
	for t.pin.Read() != l {
		if d := now().Sub(start); d > timeout {
			return d, errLevelTimeout
		}
	}
	return now().Sub(start), nil
}
