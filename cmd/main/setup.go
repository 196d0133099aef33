package main

import (
	"options-flow/src/analysis"
	"options-flow/src/config"
	datasource "options-flow/src/data_source"
	"options-flow/src/data_source/yahoo"
	"options-flow/src/grpc_control"
	"options-flow/src/interfaces"
	"options-flow/src/logger"
	"options-flow/src/models"
	"options-flow/src/network"
	"options-flow/src/server"
	"options-flow/src/utils"
)

// -----------------------------------------------------------------------------

// setupNetwork initializes the network manager
func setupNetwork(config *models.MConfig) interfaces.INetworkManager {
	networkLogger := logger.NewLogger(config, "NetworkManager")
	return network.NewAsyncNetworkManager(config, networkLogger)
}

// -----------------------------------------------------------------------------

// setupFlow wires the crumb cache, chain source and analysis into one flow service.
// The crumb cache is shared by every surface.
func setupFlow(config *models.MConfig, networkManager interfaces.INetworkManager) *datasource.FlowManager {
	cache := yahoo.NewCrumbAuthCache(config.Provider, networkManager, logger.NewLogger(config, "CrumbAuthCache"))
	source := yahoo.NewOptionsChainSource(config.Provider, networkManager, cache, logger.NewLogger(config, "YahooOptions"))
	analyzer := analysis.NewAnalysisFacade(config, logger.NewLogger(config, "Analysis"))
	return datasource.NewFlowManager(source, analyzer, cache, logger.NewLogger(config, "FlowManager"))
}

// -----------------------------------------------------------------------------

func setupServer(config *models.MConfig, flow interfaces.IFlowService) *server.FastAPIServer {
	serverLogger := logger.NewLogger(config, "FastAPIServer")
	scheduler := utils.NewMarketScheduler(serverLogger.Named("MarketScheduler"))
	return server.NewFastAPIServer(config, flow, scheduler, serverLogger)
}

// -----------------------------------------------------------------------------

func setupControl(conf *config.Config, flow interfaces.IFlowService, watch interfaces.IWatchHub, configPath string) *grpc_control.GrpcServer {
	controlLogger := logger.NewLogger(conf, "ControlService")
	service := grpc_control.NewControlService(conf, flow, watch, configPath, controlLogger)
	return grpc_control.NewGrpcServer(conf.MConfig, service, controlLogger)
}
