package ports

import (
	"context"

	"github.com/fr0stylo/guildwatch/internal/app/domain"
)

// MessageSender delivers a direct message to one user.
type MessageSender interface {
	SendDirect(ctx context.Context, userID, content string) error
}

// ChannelReplier answers a message on the channel it arrived on.
type ChannelReplier interface {
	Reply(ctx context.Context, channelID, messageID, content string) error
}

// GuildDirectory exposes the gateway session's local guild cache.
type GuildDirectory interface {
	Guilds() []domain.Guild
	Guild(id string) (domain.Guild, bool)
}
