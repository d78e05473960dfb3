// Package timeouts defines shared timeout constants used across the service.
package timeouts

import "time"

// Collaborator caps a single call to the chat platform or code host when the
// caller does not supply its own bound.
const Collaborator = 5 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second

// StoreOpen caps how long an embedded store waits for its file lock.
const StoreOpen = time.Second
