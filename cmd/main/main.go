package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"options-flow/src/config"
	"options-flow/src/logger"
)

// -----------------------------------------------------------------------------

func main() {

	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional dotenv file with OPTIONSFLOW_* overrides")
	flag.Parse()

	// 2. Load config
	if err := config.LoadEnvFile(*envPath); err != nil {
		fmt.Printf("Error loading env file: %v\n", err)
		os.Exit(1)
	}
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf, conf.Name)

	// 4. Setup Components
	networkManager := setupNetwork(conf.MConfig)
	flow := setupFlow(conf.MConfig, networkManager)
	srv := setupServer(conf.MConfig, flow)
	control := setupControl(conf, flow, srv, *configPath)

	// 5. Start Servers
	startServers(appLogger, srv, control)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	if err := control.Stop(); err != nil {
		appLogger.Error("gRPC shutdown failed: %v", err)
	}
	if err := srv.Stop(); err != nil {
		appLogger.Error("Server shutdown failed: %v", err)
	}
	appLogger.Info("Shutdown complete.")
}
