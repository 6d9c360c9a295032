// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber application from this configuration: the listen
// address, the API key enforced by the auth middleware and the graceful shutdown
// timeout. PublicPaths lists the routes that stay reachable without a key.
package server
