// Package server holds the admin HTTP server configuration.
//
// The `start` command uses it to decide whether to expose the job trigger and
// integrity endpoints, which port to listen on and which API key protects them.
package server
