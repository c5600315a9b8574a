// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/relabs-tech/nmea_trackpoints/internal/app"
	"github.com/relabs-tech/nmea_trackpoints/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to KEY=VALUE config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] output-nmea-log-file\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Println("starting NMEA capture (GPS serial -> log, MQTT, websocket)")
	if err := app.RunCapture(ctx, config.Get(), flag.Arg(0)); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
