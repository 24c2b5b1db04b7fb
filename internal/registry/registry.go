// Package registry owns the set of monitored guilds and keeps its durable copy
// in step with every mutation.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fr0stylo/guildwatch/internal/app/ports"
)

// CorruptStateError reports persisted state that could not be decoded. The
// process must not continue with an undefined monitoring scope.
type CorruptStateError struct {
	Err error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("registry state is corrupt: %v", e.Err)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

// Options tunes registry behaviour.
type Options struct {
	// ResyncPace is the pause between registering guilds during ResyncAll.
	ResyncPace time.Duration
}

// Registry is the monitored guild set. The in-memory set is authoritative;
// the store is rewritten after each change and a failed write is only logged.
type Registry struct {
	store ports.GuildStore
	log   *slog.Logger
	pace  time.Duration

	mu    sync.RWMutex
	ids   []string
	index map[string]struct{}
}

// New creates an empty registry on top of store.
func New(store ports.GuildStore, log *slog.Logger, opts Options) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		store: store,
		log:   log,
		pace:  opts.ResyncPace,
		index: make(map[string]struct{}),
	}
}

// Load replaces the in-memory set with the stored one. Missing state is
// created empty; undecodable state yields *CorruptStateError.
func (r *Registry) Load(ctx context.Context) error {
	ids, err := r.store.LoadGuildIDs(ctx)
	switch {
	case errors.Is(err, ports.ErrStateNotFound):
		r.replace(nil)
		if saveErr := r.store.SaveGuildIDs(ctx, []string{}); saveErr != nil {
			r.log.ErrorContext(ctx, "registry persistence diverged", "op", "load", "error", saveErr)
		}
		r.log.InfoContext(ctx, "Created new monitored guild state")
		return nil
	case errors.Is(err, ports.ErrStateCorrupt):
		return &CorruptStateError{Err: err}
	case err != nil:
		return fmt.Errorf("load monitored guilds: %w", err)
	}

	r.replace(ids)
	r.log.InfoContext(ctx, "Loaded monitored guilds", "count", r.Len())
	return nil
}

// ResyncAll replaces the set with ids, pausing ResyncPace between entries,
// then persists once. It returns the new size. Only ctx cancellation during
// the pacing is reported as an error; the set is left untouched in that case.
func (r *Registry) ResyncAll(ctx context.Context, ids []string) (int, error) {
	r.log.InfoContext(ctx, "Resyncing monitored guilds", "visible", len(ids))

	next := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		next = append(next, id)
		r.log.DebugContext(ctx, "Registered guild for monitoring", "guild_id", id, "position", i+1, "total", len(ids))
		if err := r.sleep(ctx); err != nil {
			return r.Len(), err
		}
	}

	snapshot := r.replace(next)
	r.persist(ctx, "resync", snapshot)
	r.log.InfoContext(ctx, "Resync complete", "monitored", len(snapshot))
	return len(snapshot), nil
}

// Add inserts id and persists when the set changed.
func (r *Registry) Add(ctx context.Context, id string) bool {
	r.mu.Lock()
	if _, ok := r.index[id]; ok {
		r.mu.Unlock()
		return false
	}
	r.index[id] = struct{}{}
	r.ids = append(r.ids, id)
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.persist(ctx, "add", snapshot)
	return true
}

// Remove deletes id and persists when the set changed.
func (r *Registry) Remove(ctx context.Context, id string) bool {
	r.mu.Lock()
	if _, ok := r.index[id]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.index, id)
	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.persist(ctx, "remove", snapshot)
	return true
}

// Contains reports whether id is monitored.
func (r *Registry) Contains(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[id]
	return ok
}

// List returns a snapshot that later mutations do not affect.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Len returns the number of monitored guilds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}

func (r *Registry) replace(ids []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = make([]string, 0, len(ids))
	r.index = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := r.index[id]; ok {
			continue
		}
		r.index[id] = struct{}{}
		r.ids = append(r.ids, id)
	}
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

func (r *Registry) persist(ctx context.Context, op string, snapshot []string) {
	if err := r.store.SaveGuildIDs(ctx, snapshot); err != nil {
		r.log.ErrorContext(ctx, "registry persistence diverged", "op", op, "size", len(snapshot), "error", err)
	}
}

func (r *Registry) sleep(ctx context.Context) error {
	if r.pace <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.pace)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
