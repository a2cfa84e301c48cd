// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// dht22 polls a DHT22 temperature/humidity sensor on a GPIO pin and prints
// each reading.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/KPkaustubhKP/SMART-app/dht22"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func mainImpl() error {
	pinName := flag.String("pin", "GPIO15", "name of the GPIO pin the sensor data line is on")
	interval := flag.Duration("interval", 10*time.Second, "time between readings")
	retries := flag.Int("retries", 3, "retries per reading")
	flag.Parse()

	if _, err := host.Init(); err != nil {
		return err
	}
	p := gpioreg.ByName(*pinName)
	if p == nil {
		log.Fatalf("no such pin: %s", *pinName)
	}
	dev, err := dht22.New(p, nil)
	if err != nil {
		return err
	}

	env := physic.Env{}
	for {
		if err := dev.SenseRetry(&env, *retries); err != nil {
			log.Println(err)
		} else {
			log.Printf("%8s %9s", env.Temperature, env.Humidity)
		}
		time.Sleep(*interval)
	}
}

func main() {
	if err := mainImpl(); err != nil {
		log.Fatalf("dht22: %s", err)
	}
}
