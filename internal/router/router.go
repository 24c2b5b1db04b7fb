// Package router dispatches gateway events to the registry, the notifier and
// the command interpreter. Events are handled one at a time in arrival order.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fr0stylo/guildwatch/internal/app/domain"
	"github.com/fr0stylo/guildwatch/internal/app/ports"
	"github.com/fr0stylo/guildwatch/internal/command"
	"github.com/fr0stylo/guildwatch/internal/notifier"
	"github.com/fr0stylo/guildwatch/internal/observability"
)

// State is the gateway session state as seen by the router.
type State int32

const (
	StateDisconnected State = iota
	StateReady
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	default:
		return "disconnected"
	}
}

// Registry is the monitored guild set.
type Registry interface {
	Load(ctx context.Context) error
	ResyncAll(ctx context.Context, ids []string) (int, error)
	Add(ctx context.Context, id string) bool
	Remove(ctx context.Context, id string) bool
	Contains(id string) bool
}

// Notifier fans a message out to recipients.
type Notifier interface {
	Notify(ctx context.Context, recipients []string, message string) int
}

// Commands executes parsed operator commands.
type Commands interface {
	Execute(ctx context.Context, cmd command.Command, out command.Responder) error
}

// Config carries the router's static settings.
type Config struct {
	// Recipients receive notifications and are the only users allowed to
	// issue commands.
	Recipients []string
	// SelfID returns the session account's user ID once known.
	SelfID func() string
	// SettleDelay is the pause between Ready and the resync.
	SettleDelay time.Duration
	// Now stamps notifications. Defaults to time.Now.
	Now func() time.Time
}

// Router dispatches gateway events.
type Router struct {
	registry  Registry
	notifier  Notifier
	commands  Commands
	directory ports.GuildDirectory
	replier   ports.ChannelReplier
	format    notifier.Formatter
	log       *slog.Logger

	recipients  []string
	allowed     map[string]struct{}
	selfID      func() string
	settleDelay time.Duration
	now         func() time.Time

	state atomic.Int32
}

// Deps groups the router's collaborators.
type Deps struct {
	Registry  Registry
	Notifier  Notifier
	Commands  Commands
	Directory ports.GuildDirectory
	Replier   ports.ChannelReplier
	Formatter notifier.Formatter
	Logger    *slog.Logger
}

func New(deps Deps, cfg Config) *Router {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	selfID := cfg.SelfID
	if selfID == nil {
		selfID = func() string { return "" }
	}
	allowed := make(map[string]struct{}, len(cfg.Recipients))
	for _, id := range cfg.Recipients {
		allowed[id] = struct{}{}
	}
	return &Router{
		registry:    deps.Registry,
		notifier:    deps.Notifier,
		commands:    deps.Commands,
		directory:   deps.Directory,
		replier:     deps.Replier,
		format:      deps.Formatter,
		log:         log,
		recipients:  append([]string(nil), cfg.Recipients...),
		allowed:     allowed,
		selfID:      selfID,
		settleDelay: cfg.SettleDelay,
		now:         now,
	}
}

// State reports whether the initial load and resync completed for the
// current session.
func (r *Router) State() State {
	return State(r.state.Load())
}

// Run dispatches events until ctx is done or events is closed. Failures of a
// Ready sequence stop the loop; all other failures are logged.
func (r *Router) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			err := r.Dispatch(ctx, event)
			if err == nil {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			if _, ready := event.(Ready); ready {
				return err
			}
			r.log.ErrorContext(ctx, "Event handling failed", "event", Kind(event), "error", err)
		}
	}
}

// Dispatch handles a single event.
func (r *Router) Dispatch(ctx context.Context, event Event) error {
	if event == nil {
		return nil
	}
	ctx, span := observability.StartEventSpan(ctx, event.kind(), event.guildID())
	defer span.End()

	var err error
	switch e := event.(type) {
	case Ready:
		err = r.onReady(ctx, e)
	case Disconnected:
		r.state.Store(int32(StateDisconnected))
		r.log.WarnContext(ctx, "Gateway session lost")
	case Resumed:
		err = r.onResumed(ctx)
	case MemberJoined:
		r.onMemberJoined(ctx, e)
	case GuildJoined:
		r.onGuildJoined(ctx, e)
	case GuildLeft:
		r.onGuildLeft(ctx, e)
	case MessageReceived:
		err = r.onMessage(ctx, e)
	}
	span.RecordError(err)
	return err
}

func (r *Router) onReady(ctx context.Context, e Ready) error {
	r.state.Store(int32(StateDisconnected))
	r.log.InfoContext(ctx, "Gateway session ready", "guilds", len(e.Guilds))

	if err := r.registry.Load(ctx); err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	if err := sleep(ctx, r.settleDelay); err != nil {
		return err
	}

	guilds := r.directory.Guilds()
	if len(guilds) == 0 {
		guilds = e.Guilds
	}
	count, err := r.registry.ResyncAll(ctx, domain.GuildIDs(guilds))
	if err != nil {
		return fmt.Errorf("resync registry: %w", err)
	}

	r.state.Store(int32(StateReady))
	r.log.InfoContext(ctx, "Monitoring guilds", "count", count)
	return nil
}

// onResumed restores the ready state after a resumed session. The registry is
// already loaded, so only the visible guilds are resynced.
func (r *Router) onResumed(ctx context.Context) error {
	guilds := r.directory.Guilds()
	if len(guilds) == 0 {
		r.log.WarnContext(ctx, "Session resumed with an empty guild cache, keeping monitored set")
		r.state.Store(int32(StateReady))
		return nil
	}
	count, err := r.registry.ResyncAll(ctx, domain.GuildIDs(guilds))
	if err != nil {
		return fmt.Errorf("resync registry after resume: %w", err)
	}
	r.state.Store(int32(StateReady))
	r.log.InfoContext(ctx, "Gateway session resumed", "monitored", count)
	return nil
}

func (r *Router) onMemberJoined(ctx context.Context, e MemberJoined) {
	if !r.registry.Contains(e.Guild.ID) {
		r.log.DebugContext(ctx, "Ignoring join in unmonitored guild", "member_id", e.Member.ID)
		return
	}
	event := domain.NewNotificationEvent(r.resolve(e.Guild), e.Member, r.now())
	r.log.InfoContext(ctx, "Member joined", "member", e.Member.Username, "member_id", e.Member.ID)
	r.notifier.Notify(ctx, r.recipients, r.format.MemberJoined(event))
}

func (r *Router) onGuildJoined(ctx context.Context, e GuildJoined) {
	r.registry.Add(ctx, e.Guild.ID)
	r.log.InfoContext(ctx, "Joined guild", "name", e.Guild.Name)
	r.notifier.Notify(ctx, r.recipients, r.format.GuildJoined(e.Guild))
}

func (r *Router) onGuildLeft(ctx context.Context, e GuildLeft) {
	if !r.registry.Contains(e.Guild.ID) {
		return
	}
	r.registry.Remove(ctx, e.Guild.ID)
	r.log.InfoContext(ctx, "Removed from guild", "name", e.Guild.Name)
	r.notifier.Notify(ctx, r.recipients, r.format.GuildRemoved(e.Guild))
}

func (r *Router) onMessage(ctx context.Context, e MessageReceived) error {
	msg := e.Message
	if msg.AuthorID == "" || msg.AuthorID == r.selfID() {
		return nil
	}
	if _, ok := r.allowed[msg.AuthorID]; !ok {
		return nil
	}
	cmd, ok := command.Parse(msg.Content)
	if !ok {
		return nil
	}

	r.log.InfoContext(ctx, "Executing command", "verb", string(cmd.Verb), "author_id", msg.AuthorID)
	out := channelResponder{replier: r.replier, channelID: msg.ChannelID, messageID: msg.ID}
	if err := r.commands.Execute(ctx, cmd, out); err != nil {
		return fmt.Errorf("execute %s command: %w", cmd.Verb, err)
	}
	return nil
}

// resolve fills in a missing guild name from the directory.
func (r *Router) resolve(guild domain.Guild) domain.Guild {
	if guild.Name != "" || r.directory == nil {
		return guild
	}
	if known, ok := r.directory.Guild(guild.ID); ok {
		return known
	}
	return guild
}

type channelResponder struct {
	replier   ports.ChannelReplier
	channelID string
	messageID string
}

func (c channelResponder) Reply(ctx context.Context, content string) error {
	if c.replier == nil {
		return errors.New("no channel replier configured")
	}
	return c.replier.Reply(ctx, c.channelID, c.messageID, content)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
