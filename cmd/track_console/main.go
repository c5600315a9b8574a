package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/nmea_trackpoints/internal/app"
	"github.com/relabs-tech/nmea_trackpoints/internal/config"
)

func main() {
	configPath := flag.String("config", "trackpoints_config.txt", "path to KEY=VALUE config file")
	flag.Parse()

	log.Println("starting track console (MQTT subscriber)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunTrackConsole(config.Get()); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
