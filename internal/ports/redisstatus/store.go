// Package redisstatus publishes room status to Redis.
package redisstatus

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Room status values stored under room:{id}:status.
const (
	statusPlaying  = "playing"
	statusFinished = "finished"
)

// Finished rooms expire so stale keys don't accumulate.
const finishedTTL = 24 * time.Hour

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) SetPlaying(ctx context.Context, roomID string) error {
	return s.client.Set(ctx, key(roomID), statusPlaying, 0).Err()
}

func (s *Store) SetFinished(ctx context.Context, roomID string) error {
	return s.client.Set(ctx, key(roomID), statusFinished, finishedTTL).Err()
}

func key(roomID string) string {
	return "room:" + roomID + ":status"
}
