// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht22

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"
)

// bitDurations expands frame bytes into the nominal pulse widths a sensor
// would produce for them.
func bitDurations(f frame) []time.Duration {
	highs := make([]time.Duration, frameBits)
	for i := range highs {
		if f[i/8]&(1<<(7-uint(i%8))) != 0 {
			highs[i] = 70 * time.Microsecond
		} else {
			highs[i] = 28 * time.Microsecond
		}
	}
	return highs
}

func TestDecodeBits(t *testing.T) {
	expected := frame{0x02, 0x58, 0x01, 0x19, 0x74}
	if got := decodeBits(bitDurations(expected), DefaultOpts.BitThreshold); got != expected {
		t.Errorf("expected % 02x, got % 02x", expected, got)
	}
}

// TestDecodeBits_threshold pins the boundary behavior: a pulse of exactly
// the threshold is a 1, one microsecond below is a 0.
func TestDecodeBits_threshold(t *testing.T) {
	testData := []struct {
		high time.Duration
		bit  byte
	}{
		{28 * time.Microsecond, 0},
		{49 * time.Microsecond, 0},
		{50 * time.Microsecond, 1},
		{51 * time.Microsecond, 1},
		{70 * time.Microsecond, 1},
	}

	for _, entry := range testData {
		t.Run(entry.high.String(), func(st *testing.T) {
			highs := make([]time.Duration, frameBits)
			highs[0] = entry.high
			f := decodeBits(highs, DefaultOpts.BitThreshold)
			if got := f[0] >> 7; got != entry.bit {
				st.Errorf("%s decoded to bit %d, expected %d", entry.high, got, entry.bit)
			}
		})
	}
}

func TestInterpret(t *testing.T) {
	e := physic.Env{}
	// 60.0%RH and 28.1°C, valid checksum.
	if err := (frame{0x02, 0x58, 0x01, 0x19, 0x74}).interpret(&e); err != nil {
		t.Fatal(err)
	}
	if expected := physic.ZeroCelsius + 28_100*physic.MilliKelvin; e.Temperature != expected {
		t.Errorf("incorrect temperature. Expected: %s Found: %s", expected, e.Temperature)
	}
	if expected := 60 * physic.PercentRH; e.Humidity != expected {
		t.Errorf("incorrect humidity. Expected: %s Found: %s", expected, e.Humidity)
	}
	if e.Pressure != 0 {
		t.Error("this device doesn't measure pressure")
	}
}

func TestInterpret_checksumMismatch(t *testing.T) {
	// True sum is 0x3d, frame carries 0x3a.
	e := physic.Env{}
	err := (frame{0x02, 0x8c, 0x00, 0xaf, 0x3a}).interpret(&e)
	cme := &ChecksumMismatchError{}
	if !errors.As(err, &cme) {
		t.Fatalf("expected ChecksumMismatchError, got %v", err)
	}
	if cme.Frame != 0x3a || cme.Sum != 0x3d {
		t.Errorf("expected frame 0x3a vs sum 0x3d, got 0x%02x vs 0x%02x", cme.Frame, cme.Sum)
	}
	if e.Temperature != 0 || e.Humidity != 0 {
		t.Error("a rejected frame must not be interpreted")
	}
}

func TestInterpret_outOfRange(t *testing.T) {
	testData := []struct {
		name string
		f    frame
	}{
		// 100.1%RH, checksum valid.
		{"humidity above 100", frame{0x03, 0xe9, 0x01, 0x19}},
		// 80.1°C, checksum valid.
		{"temperature above 80", frame{0x02, 0x58, 0x03, 0x21}},
		// -40.1°C, checksum valid.
		{"temperature below -40", frame{0x02, 0x58, 0x81, 0x91}},
	}

	for _, entry := range testData {
		t.Run(entry.name, func(st *testing.T) {
			f := entry.f
			f[4] = f.checksum()
			e := physic.Env{}
			err := f.interpret(&e)
			oor := &OutOfRangeError{}
			if !errors.As(err, &oor) {
				st.Fatalf("expected OutOfRangeError, got %v", err)
			}
		})
	}
}

func TestInterpret_negativeTemperature(t *testing.T) {
	// Sign bit plus magnitude 25 tenths is -2.5°C, not two's-complement.
	f := frame{0x00, 0x00, 0x80, 0x19}
	f[4] = f.checksum()
	e := physic.Env{}
	if err := f.interpret(&e); err != nil {
		t.Fatal(err)
	}
	if expected := physic.ZeroCelsius - 2_500*physic.MilliKelvin; e.Temperature != expected {
		t.Errorf("incorrect temperature. Expected: %s Found: %s", expected, e.Temperature)
	}
}

// TestRoundTrip encodes in-range readings the way the sensor would and runs
// them through the decoder and validator; nothing may be lost at the 0.1
// resolution.
func TestRoundTrip(t *testing.T) {
	testData := []struct {
		humidity    int // tenths of %RH
		temperature int // tenths of °C
	}{
		{0, -400},
		{0, 0},
		{3, -1},
		{600, 281},
		{348, 239},
		{999, 799},
		{1000, 800},
		{452, -104},
	}

	for _, entry := range testData {
		t.Run(fmt.Sprintf("%d/%d", entry.humidity, entry.temperature), func(st *testing.T) {
			f := frame{byte(entry.humidity >> 8), byte(entry.humidity)}
			mag := entry.temperature
			if mag < 0 {
				mag = -mag
				f[2] = 0x80
			}
			f[2] |= byte(mag >> 8)
			f[3] = byte(mag)
			f[4] = f.checksum()

			e := physic.Env{}
			if err := decodeBits(bitDurations(f), DefaultOpts.BitThreshold).interpret(&e); err != nil {
				st.Fatal(err)
			}
			expectedT := physic.ZeroCelsius + physic.Temperature(entry.temperature)*100*physic.MilliKelvin
			if e.Temperature != expectedT {
				st.Errorf("incorrect temperature. Expected: %s Found: %s", expectedT, e.Temperature)
			}
			expectedH := physic.RelativeHumidity(entry.humidity) * physic.MilliRH
			if e.Humidity != expectedH {
				st.Errorf("incorrect humidity. Expected: %s Found: %s", expectedH, e.Humidity)
			}
		})
	}
}
