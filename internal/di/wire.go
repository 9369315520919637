//go:build wireinject
// +build wireinject

package di

import (
	"IPOWatch/pkg/config"
	"IPOWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application with
// its cleanup. Regenerate wire_gen.go with `wire ./internal/di`.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Collaborators
		ProvideProvider,
		ProvidePusher,
		ProvideResultStore,
		ProvideCache,
		ProvideSnapshotStore,
		ProvideSinks,

		// Use cases
		ProvideNotifier,
		ProvidePipeline,
		ProvideScheduler,

		// Application server
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}
