package main

import (
	"options-flow/src/interfaces"
	"options-flow/src/logger"
)

// -----------------------------------------------------------------------------

// startServers runs every served surface in the background
func startServers(appLogger *logger.Logger, surfaces ...interfaces.IDataExchanger) {
	for _, surface := range surfaces {
		go func(s interfaces.IDataExchanger) {
			if err := s.Start(); err != nil {
				appLogger.Critical("Server failed: %v", err)
			}
		}(surface)
	}
}
