// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"time"

	"periph.io/x/conn/v3/physic"
)

// frame is the sensor's 40-bit payload: humidity high and low byte,
// temperature high and low byte, additive checksum.
type frame [5]byte

// decodeBits converts 40 measured high-phase durations into the frame
// bytes, MSB first in capture order. A duration of exactly the threshold
// decodes as 1; the nominal pulses sit at 26-28µs and ~70µs, so the
// boundary only matters for noisy edges. Pure function; the caller
// guarantees exactly frameBits durations.
func decodeBits(highs []time.Duration, threshold time.Duration) frame {
	var f frame
	for i, d := range highs {
		if d >= threshold {
			f[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return f
}

// checksum returns the additive checksum of the four data bytes.
func (f frame) checksum() byte {
	return f[0] + f[1] + f[2] + f[3]
}

// interpret validates the frame and fills e, or reports why it cannot. The
// numeric fields of a rejected frame are never interpreted.
//
// Both quantities arrive big-endian in tenths of a unit. Temperature uses
// the sensor's sign-magnitude convention: the top bit of the third byte is
// the sign and the remaining 15 bits are the magnitude. This is not
// two's-complement and must not be widened as such.
func (f frame) interpret(e *physic.Env) error {
	if sum := f.checksum(); sum != f[4] {
		return &ChecksumMismatchError{Frame: f[4], Sum: sum}
	}
	h := int32(f[0])<<8 | int32(f[1])
	t := int32(f[2]&0x7f)<<8 | int32(f[3])
	if f[2]&0x80 != 0 {
		t = -t
	}
	// A checksum-valid frame can still be line noise. The sensor measures
	// 0-100%RH and -40 to +80°C; anything outside is rejected.
	if h > 1000 || t < -400 || t > 800 {
		return &OutOfRangeError{Humidity: float64(h) / 10, Temperature: float64(t) / 10}
	}
	e.Temperature = physic.ZeroCelsius + (physic.Celsius/10)*physic.Temperature(t)
	e.Pressure = 0
	e.Humidity = physic.RelativeHumidity(h) * physic.MilliRH
	return nil
}
