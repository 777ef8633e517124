// Package mq publishes domain events about recipes and their collaborators.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	RecipeUpdated                 = "recipe.updated"
	RecipeDeleted                 = "recipe.deleted"
	EditProposed                  = "edit.proposed"
	EditReviewed                  = "edit.reviewed"
	CollaboratorInvited           = "collaborator.invited"
	CollaboratorRemoved           = "collaborator.removed"
	CollaboratorPermissionChanged = "collaborator.permission_changed"
)

type Event struct {
	Name     string            `json:"event"`
	RecipeID string            `json:"recipeId"`
	ActorID  string            `json:"actorId"`
	Data     map[string]string `json:"data,omitempty"`
	At       time.Time         `json:"at"`
}

type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

// Notify emits ev and logs a failure instead of returning it. Events are
// best effort and never fail the operation that produced them.
func Notify(ctx context.Context, emitter Emitter, logger *slog.Logger, ev Event) {
	if emitter == nil {
		return
	}
	if err := emitter.Emit(ctx, ev); err != nil && logger != nil {
		logger.Warn("event emit failed", "event", ev.Name, "recipe_id", ev.RecipeID, "error", err)
	}
}

// LogEmitter writes events to the log. Used when Redis is not configured.
type LogEmitter struct {
	Logger *slog.Logger
}

func (e LogEmitter) Emit(ctx context.Context, ev Event) error {
	e.Logger.InfoContext(ctx, "event emitted",
		"event", ev.Name,
		"recipe_id", ev.RecipeID,
		"actor_id", ev.ActorID,
	)
	return nil
}

// RedisEmitter publishes events as JSON on a Redis pub/sub channel.
type RedisEmitter struct {
	conn    *redis.Client
	channel string
}

func NewRedisEmitter(conn *redis.Client, channel string) *RedisEmitter {
	return &RedisEmitter{conn: conn, channel: channel}
}

func (e *RedisEmitter) Emit(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", ev.Name, err)
	}
	return e.conn.Publish(ctx, e.channel, payload).Err()
}

// Recorder keeps emitted events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Emit(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names lists the names of recorded events in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, ev := range r.events {
		names[i] = ev.Name
	}
	return names
}
