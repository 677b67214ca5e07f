package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kitesim/config"
	"kitesim/network"
	"kitesim/physics"
	"kitesim/session"
)

var (
	port = flag.Int("port", 0, "Port to listen on (overrides KITESIM_PORT)")
)

func main() {
	flag.Parse()
	config.InitConfig()

	listenPort := *port
	if listenPort == 0 {
		listenPort = config.GetEnvInt("KITESIM_PORT", 8080)
	}

	params := physics.DefaultParams()
	params.WindSpeed = config.GetEnvFloat("KITESIM_WIND_SPEED", params.WindSpeed)
	params.WindDirectionDeg = config.GetEnvFloat("KITESIM_WIND_DIR", params.WindDirectionDeg)
	params.Turbulence = config.GetEnvFloat("KITESIM_TURBULENCE", params.Turbulence)
	params.LineRestLength = config.GetEnvFloat("KITESIM_LINE_LENGTH", params.LineRestLength)

	manager := session.NewManager(params)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", listenPort),
		Handler: network.Router(manager),
	}

	go func() {
		log.Printf("listening on :%d (ws endpoint: /ws/{code})", listenPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
