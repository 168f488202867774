package main

import (
	"context"

	"github.com/vyrodovalexey/avrouter/internal/config"
	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// startConfigWatcher starts the configuration watcher. Route table
// changes are hot-reloaded into the memory provider; Redis-backed
// deployments manage routes in Redis directly, so only the reload of
// the in-file table applies there.
func startConfigWatcher(app *application, configPath string, logger observability.Logger) *config.Watcher {
	watcher, err := config.NewWatcher(configPath, func(newCfg *config.Config) {
		reloadRoutes(app, newCfg, logger)
	}, config.WithLogger(logger))

	if err != nil {
		logger.Warn("failed to create config watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(context.Background()); err != nil {
		logger.Warn("failed to start config watcher", observability.Error(err))
	}

	return watcher
}

// reloadRoutes applies a changed route table.
func reloadRoutes(app *application, newCfg *config.Config, logger observability.Logger) {
	if app.memProvider == nil {
		logger.Info("configuration changed; routes are provider-managed, skipping route reload")
		return
	}

	if err := app.memProvider.Load(routePointers(newCfg.Routes)); err != nil {
		logger.Error("failed to reload routes", observability.Error(err))
		return
	}

	logger.Info("route table reloaded",
		observability.Int("routes", len(newCfg.Routes)),
	)
}
