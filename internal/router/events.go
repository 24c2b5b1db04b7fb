package router

import "github.com/fr0stylo/guildwatch/internal/app/domain"

// Event is one gateway occurrence the router handles. The set is closed.
type Event interface {
	kind() string
	guildID() string
}

// Ready reports an established gateway session and the guilds it announced.
type Ready struct {
	Guilds []domain.Guild
}

// MemberJoined reports a user joining a guild.
type MemberJoined struct {
	Guild  domain.Guild
	Member domain.Member
}

// GuildJoined reports the session account being added to a guild.
type GuildJoined struct {
	Guild domain.Guild
}

// GuildLeft reports the session account being removed from a guild.
type GuildLeft struct {
	Guild domain.Guild
}

// MessageReceived reports an inbound text message.
type MessageReceived struct {
	Message domain.Message
}

// Disconnected reports a lost gateway session.
type Disconnected struct{}

// Resumed reports a dropped session that reconnected without a new Ready.
type Resumed struct{}

func (Ready) kind() string { return "ready" }
func (MemberJoined) kind() string { return "member_joined" }
func (GuildJoined) kind() string { return "guild_joined" }
func (GuildLeft) kind() string { return "guild_left" }
func (MessageReceived) kind() string { return "message_received" }
func (Disconnected) kind() string { return "disconnected" }
func (Resumed) kind() string { return "resumed" }

func (Ready) guildID() string { return "" }
func (e MemberJoined) guildID() string { return e.Guild.ID }
func (e GuildJoined) guildID() string { return e.Guild.ID }
func (e GuildLeft) guildID() string { return e.Guild.ID }
func (MessageReceived) guildID() string { return "" }
func (Disconnected) guildID() string { return "" }
func (Resumed) guildID() string { return "" }

// Kind names the event for logs and spans.
func Kind(event Event) string {
	if event == nil {
		return ""
	}
	return event.kind()
}
