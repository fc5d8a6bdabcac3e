package main

import (
	"github.com/escherba/phraser/internal/app/server"
	"github.com/escherba/phraser/internal/config"
)

func main() {
	cfg := config.Load()
	config.SetupLogging(cfg.Server.LogLevel)
	server.Run(cfg)
}
