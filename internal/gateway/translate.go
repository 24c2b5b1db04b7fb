package gateway

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/fr0stylo/guildwatch/internal/app/domain"
	"github.com/fr0stylo/guildwatch/internal/router"
)

// translator turns discordgo callbacks into router events. Guilds announced
// by Ready, and guilds that went through an outage, arrive later as
// GuildCreate; those are availability updates, not joins.
type translator struct {
	out  chan<- router.Event
	done <-chan struct{}
	log  *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

func newTranslator(ctx context.Context, out chan<- router.Event, log *slog.Logger) *translator {
	return &translator{
		out:     out,
		done:    ctx.Done(),
		log:     log,
		pending: make(map[string]struct{}),
	}
}

func (t *translator) emit(event router.Event) {
	select {
	case t.out <- event:
	case <-t.done:
		t.log.Debug("Dropping gateway event after shutdown", "event", router.Kind(event))
	}
}

func (t *translator) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	guilds := make([]domain.Guild, 0, len(r.Guilds))
	t.mu.Lock()
	t.pending = make(map[string]struct{}, len(r.Guilds))
	for _, g := range r.Guilds {
		t.pending[g.ID] = struct{}{}
		guilds = append(guilds, toGuild(g))
	}
	t.mu.Unlock()

	if r.User != nil {
		t.log.Info("Logged in", "user", r.User.Username, "user_id", r.User.ID, "guilds", len(guilds))
	}
	t.emit(router.Ready{Guilds: guilds})
}

func (t *translator) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil || g.Unavailable {
		return
	}
	t.mu.Lock()
	_, known := t.pending[g.ID]
	delete(t.pending, g.ID)
	t.mu.Unlock()

	if known {
		t.log.Debug("Guild became available", "guild_id", g.ID)
		return
	}
	t.emit(router.GuildJoined{Guild: toGuild(g.Guild)})
}

func (t *translator) onGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Guild == nil {
		return
	}
	if g.Unavailable {
		t.mu.Lock()
		t.pending[g.ID] = struct{}{}
		t.mu.Unlock()
		t.log.Warn("Guild unavailable", "guild_id", g.ID)
		return
	}

	guild := toGuild(g.Guild)
	if guild.Name == "" && g.BeforeDelete != nil {
		guild.Name = g.BeforeDelete.Name
	}
	t.emit(router.GuildLeft{Guild: guild})
}

func (t *translator) onMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil {
		return
	}
	guild := domain.Guild{ID: m.GuildID}
	if s != nil && s.State != nil {
		if g, err := s.State.Guild(m.GuildID); err == nil {
			guild.Name = g.Name
		}
	}
	t.emit(router.MemberJoined{
		Guild:  guild,
		Member: domain.Member{ID: m.User.ID, Username: m.User.Username},
	})
}

func (t *translator) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil {
		return
	}
	t.emit(router.MessageReceived{Message: domain.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		AuthorID:  m.Author.ID,
		Content:   m.Content,
	}})
}

func (t *translator) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	t.emit(router.Disconnected{})
}

func (t *translator) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	t.emit(router.Resumed{})
}

func toGuild(g *discordgo.Guild) domain.Guild {
	if g == nil {
		return domain.Guild{}
	}
	return domain.Guild{ID: g.ID, Name: g.Name}
}
