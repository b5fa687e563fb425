package main

import "context"

// Channel abstracts a secondary notification sink (Discord, Slack, etc.)
// that mirrors events alongside the overlay. The observer never writes back
// to the game server, so channels are one-way.
type Channel interface {
	Name() string
	Send(ctx context.Context, event Event) error
	Start(ctx context.Context) error
	Close() error
}
