// Package main is the entry point for the bpm2ms API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/bpm2ms/pkg/api"
	"github.com/james-see/bpm2ms/pkg/config"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "Settings file")
	port := flag.Int("port", 0, "Server port (default from settings)")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *port == 0 {
		*port = settings.ServerPort
	}

	fmt.Printf("Starting bpm2ms API server on port %d...\n", *port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	opts := api.Options{
		DefaultNote: settings.DefaultNote,
		Click:       settings.ToClickOptions(),
		Log:         logrus.StandardLogger(),
	}
	if err := api.StartServer(*port, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
