// Package ports declares the outbound interfaces the game engine
// depends on.
package ports

import "context"

// StatusStore publishes room lifecycle status for external consumers
// such as a lobby listing. Failures are logged and never block gameplay.
type StatusStore interface {
	SetPlaying(ctx context.Context, roomID string) error
	SetFinished(ctx context.Context, roomID string) error
}

// NopStatusStore discards all updates. Used when no store is configured.
type NopStatusStore struct{}

func (NopStatusStore) SetPlaying(context.Context, string) error  { return nil }
func (NopStatusStore) SetFinished(context.Context, string) error { return nil }
