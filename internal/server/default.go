package server

import (
	"github.com/standin-hq/standin/pkg/application"
	"github.com/standin-hq/standin/pkg/configuration"
	"github.com/standin-hq/standin/pkg/metrics"
	"github.com/standin-hq/standin/pkg/middleware"
	"github.com/standin-hq/standin/pkg/server"
)

// Default assembles the HTTP server with the standard middleware stack and
// the metrics endpoint.
func Default(conf *configuration.Configuration, app application.Application) *server.HTTPServer {
	srv := server.New(
		app,
		middleware.WithLogger(app.Logger(), conf.RequestIDHeader),
		middleware.WithPool(app.DB()),
	)
	srv.Router().Handle(conf.MetricsPath, metrics.Handler())
	return srv
}
