package ports

import (
	"context"
	"errors"
)

var (
	// ErrStateNotFound reports that no monitored-guild state has been persisted yet.
	ErrStateNotFound = errors.New("monitored guild state not found")
	// ErrStateCorrupt reports persisted state that cannot be decoded.
	ErrStateCorrupt = errors.New("monitored guild state is corrupt")
)

// GuildStore is the durable storage contract behind the guild registry.
// Implementations persist an ordered list of guild IDs as one unit.
type GuildStore interface {
	LoadGuildIDs(ctx context.Context) ([]string, error)
	SaveGuildIDs(ctx context.Context, ids []string) error
	Close() error
}
