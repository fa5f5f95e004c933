// Package cli implements the one-shot DarkTrack command-line client.
//
// Each invocation runs a single command against the gRPC server, for
// example:
//
//	darktrack-cli -t $TOKEN scan alice@example.com
//	darktrack-cli lookup bob@example.com
//	darktrack-cli save
//
// A quick lookup is cached in the local SQLite database until it is saved,
// so it can be confirmed right away or saved by a later invocation.
package cli
