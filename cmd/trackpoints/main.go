// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/relabs-tech/nmea_trackpoints/internal/app"
	"github.com/relabs-tech/nmea_trackpoints/internal/config"
	"github.com/relabs-tech/nmea_trackpoints/internal/trackjs"
)

func main() {
	configPath := flag.String("config", "", "path to KEY=VALUE config file")
	skipInvalid := flag.Bool("skip-invalid", false, "skip GPGGA/GPRMC pairs that fail to decode instead of aborting")
	verbose := flag.Bool("v", false, "log every decoded fix")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] input-nmea-file-name <output-js-file-name>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	inPath := flag.Arg(0)
	outPath := flag.Arg(1)
	if outPath == "" {
		outPath = trackjs.DefaultOutputPath(inPath)
	}

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := *config.Get()
	if *skipInvalid {
		cfg.SkipInvalidPairs = true
	}
	if *verbose {
		cfg.Verbose = true
	}

	if err := app.RunConvert(&cfg, inPath, outPath); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
