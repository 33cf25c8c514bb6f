package main

import (
	"stock-analytics/src/config"
	datasource "stock-analytics/src/data_source"
	"stock-analytics/src/ingest"
	"stock-analytics/src/logger"
	"stock-analytics/src/network"
	"stock-analytics/src/storage"
)

// -----------------------------------------------------------------------------

// setupFetcher builds the configured data source behind a bounded batch fetcher
func setupFetcher(conf *config.Config, appLogger *logger.Logger) (*datasource.BatchFetcher, error) {
	networkManager := network.NewHTTPNetworkManager(conf.MConfig, logger.NewLogger(conf.MConfig, "NetworkManager"))

	source, err := datasource.NewSource(conf.MConfig, networkManager)
	if err != nil {
		return nil, err
	}
	appLogger.Info("Data source: %s, %d tickers, %d concurrent requests",
		source.Name(), len(conf.Ingestion.Tickers), conf.Network.ConcurrentRequests)

	return datasource.NewBatchFetcher(source, conf.Network.ConcurrentRequests, logger.NewLogger(conf.MConfig, "BatchFetcher")), nil
}

// -----------------------------------------------------------------------------

func setupPipeline(conf *config.Config, fetcher *datasource.BatchFetcher, opener storage.Opener) *ingest.Pipeline {
	return ingest.NewPipeline(conf, fetcher, opener, logger.NewLogger(conf.MConfig, "IngestPipeline"))
}
