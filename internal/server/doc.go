// Package server provides the HTTP serving layer on top of the route
// resolution engine.
//
// # Features
//
//   - Mux dispatching requests to named handlers through the resolver
//   - Resolved attributes and path parameters delivered via the
//     request context
//   - Error-to-status mapping (no route 404, provider down 503,
//     ambiguity 500)
//   - Configurable not-found handler
//   - Server lifecycle with graceful shutdown
//   - Dedicated metrics listener for scrapes and probes
//
// # Usage
//
//	mux := server.NewMux(res, server.WithMuxLogger(logger))
//	mux.HandleFunc("users-api", usersHandler)
//
//	srv := server.NewServer(cfg.Server, mux, logger)
//	go func() { _ = srv.Start() }()
package server
