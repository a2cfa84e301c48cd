// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import "fmt"

// LineBusyError reports that the data line was not idle high before a
// transaction. Something else is driving the line, or the pull-up is
// missing.
type LineBusyError struct{}

func (e *LineBusyError) Error() string {
	return "dht22: data line is not idle high, cannot start a transaction"
}

// NoResponseError reports that the sensor never answered the host start
// signal with its handshake.
type NoResponseError struct{}

func (e *NoResponseError) Error() string {
	return "dht22: no handshake after the start signal (is the sensor connected?)"
}

// BitTimeoutError reports that a bit window did not produce the expected
// transition in time.
type BitTimeoutError struct {
	Bit int // index of the bit being captured, 0..39
}

func (e *BitTimeoutError) Error() string {
	return fmt.Sprintf("dht22: timed out capturing bit %d", e.Bit)
}

// FrameIncompleteError reports that the whole-frame deadline expired with
// fewer than 40 bits captured.
type FrameIncompleteError struct {
	Bits int // bits captured before the deadline
}

func (e *FrameIncompleteError) Error() string {
	return fmt.Sprintf("dht22: frame ended after %d of 40 bits", e.Bits)
}

// ChecksumMismatchError reports a frame that was corrupted in transit.
type ChecksumMismatchError struct {
	Frame byte // checksum byte the sensor sent
	Sum   byte // additive checksum of the four data bytes
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("dht22: checksum byte 0x%02x does not match data sum 0x%02x", e.Frame, e.Sum)
}

// OutOfRangeError reports a frame that passed the checksum but decoded to a
// value the sensor cannot physically produce, which happens when line noise
// corrupts data and checksum consistently.
type OutOfRangeError struct {
	Humidity    float64 // %RH
	Temperature float64 // °C
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("dht22: implausible reading %.1f%%RH / %.1f°C, rejecting frame", e.Humidity, e.Temperature)
}
