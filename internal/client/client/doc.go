// Package client contains the CLI's building blocks for talking to the
// DarkTrack server.
//
// # Overview
//
// The package provides:
//  1. The Client interface, a transport-agnostic contract covering scans,
//     quick lookups, history, narrative regeneration and report export.
//  2. GRPCClient, which injects the access token through a unary
//     interceptor and maps gRPC statuses back to the shared error types in
//     internal/common (validation, rate limit, not found) or to the sentinel
//     errors of this package.
//  3. InitDatabase and RunMigrations, which open the CLI's local SQLite file
//     and apply the embedded goose migrations.
//
// # Error Handling
//
// Rate-limited lookups come back as *common.RateLimitError with the next
// allowed instant decoded from the status details, so callers can render
// the retry time without parsing messages.
package client
