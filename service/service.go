// Package service runs the long-lived subsystems of the viewer: audio, theme and the site watcher
package service

import "context"

// Service defines the lifecycle of an infrastructure subsystem
//
// Lifecycle:
//  1. Construction
//  2. Init(args...) - configuration from flags or env
//  3. Start(ctx) - launch background goroutines
//  4. [runtime operation]
//  5. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init before this one
	Dependencies() []string

	// Init configures the service from optional args
	Init(args ...any) error

	// Start begins service operation; ctx bounds any goroutine it launches
	Start(ctx context.Context) error

	// Stop halts service operation and releases resources
	// Must be idempotent
	Stop() error
}
