// Package gateway connects to Discord through discordgo. It feeds router
// events from the gateway and implements the outbound messaging ports.
package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/fr0stylo/guildwatch/internal/app/domain"
	"github.com/fr0stylo/guildwatch/internal/router"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

// Session is a Discord gateway session.
type Session struct {
	dg     *discordgo.Session
	log    *slog.Logger
	events chan router.Event
	remove []func()
}

// New prepares a session authenticated with token. Handlers stop enqueueing
// once ctx is done. No connection is made until Open.
func New(ctx context.Context, token string, buffer int, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	dg, err := discordgo.New(token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	dg.Identify.Intents = intents
	dg.StateEnabled = true
	// Handlers run on the read loop so events are queued in arrival order.
	dg.SyncEvents = true

	if buffer <= 0 {
		buffer = 64
	}
	s := &Session{dg: dg, log: log, events: make(chan router.Event, buffer)}
	t := newTranslator(ctx, s.events, log)
	s.remove = append(s.remove,
		dg.AddHandler(t.onReady),
		dg.AddHandler(t.onGuildCreate),
		dg.AddHandler(t.onGuildDelete),
		dg.AddHandler(t.onMemberAdd),
		dg.AddHandler(t.onMessageCreate),
		dg.AddHandler(t.onDisconnect),
		dg.AddHandler(t.onResumed),
	)
	return s, nil
}

// Events is the stream consumed by the router.
func (s *Session) Events() <-chan router.Event {
	return s.events
}

func (s *Session) Open() error {
	if err := s.dg.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

func (s *Session) Close() error {
	for _, remove := range s.remove {
		remove()
	}
	s.remove = nil
	if err := s.dg.Close(); err != nil {
		return fmt.Errorf("close discord gateway: %w", err)
	}
	return nil
}

// SelfID returns the logged-in account's user ID, or "" before Ready.
func (s *Session) SelfID() string {
	s.dg.State.RLock()
	defer s.dg.State.RUnlock()
	if s.dg.State.User == nil {
		return ""
	}
	return s.dg.State.User.ID
}

// SendDirect opens (or reuses) a DM channel with userID and posts content.
func (s *Session) SendDirect(ctx context.Context, userID, content string) error {
	channel, err := s.dg.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm channel with %s: %w", userID, err)
	}
	if _, err := s.dg.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send dm to %s: %w", userID, err)
	}
	return nil
}

// Reply answers messageID on channelID.
func (s *Session) Reply(ctx context.Context, channelID, messageID, content string) error {
	ref := &discordgo.MessageReference{MessageID: messageID, ChannelID: channelID}
	if _, err := s.dg.ChannelMessageSendReply(channelID, content, ref, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("reply in channel %s: %w", channelID, err)
	}
	return nil
}

// Guilds lists the guilds in the session cache.
func (s *Session) Guilds() []domain.Guild {
	s.dg.State.RLock()
	defer s.dg.State.RUnlock()
	guilds := make([]domain.Guild, 0, len(s.dg.State.Guilds))
	for _, g := range s.dg.State.Guilds {
		guilds = append(guilds, toGuild(g))
	}
	return guilds
}

func (s *Session) Guild(id string) (domain.Guild, bool) {
	g, err := s.dg.State.Guild(id)
	if err != nil {
		return domain.Guild{}, false
	}
	return toGuild(g), true
}
