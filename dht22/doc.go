// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dht22 controls an AOSONG DHT22/AM2302 temperature and humidity
// sensor over its single-wire protocol on a GPIO pin.
//
// The sensor has no clock line. After a host start signal it answers with a
// low/high handshake and 40 bits encoded as pulse widths, which the driver
// measures by busy-polling the pin against a microsecond clock. A
// transaction takes about 5ms; the sensor needs at least 2 seconds between
// transactions and the driver enforces that spacing itself. The dht22.Dev
// type implements the physic.SenseEnv interface. Pressure is never set.
//
// # Datasheet
//
// https://cdn-shop.adafruit.com/datasheets/Digital+humidity+and+temperature+sensor+AM2302.pdf
package dht22
