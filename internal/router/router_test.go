package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fr0stylo/guildwatch/internal/app/domain"
	"github.com/fr0stylo/guildwatch/internal/app/ports"
	portmocks "github.com/fr0stylo/guildwatch/internal/app/ports/mocks"
	"github.com/fr0stylo/guildwatch/internal/command"
	"github.com/fr0stylo/guildwatch/internal/notifier"
	"github.com/fr0stylo/guildwatch/internal/registry"
)

const selfUserID = "bot"

type staticDirectory struct {
	guilds []domain.Guild
}

func (d staticDirectory) Guilds() []domain.Guild {
	return d.guilds
}

func (d staticDirectory) Guild(id string) (domain.Guild, bool) {
	for _, guild := range d.guilds {
		if guild.ID == id {
			return guild, true
		}
	}
	return domain.Guild{}, false
}

type harness struct {
	router  *Router
	reg     *registry.Registry
	store   *portmocks.MockGuildStore
	sender  *portmocks.MockMessageSender
	replier *portmocks.MockChannelReplier
}

func newHarness(t *testing.T, dir staticDirectory, recipients ...string) harness {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := portmocks.NewMockGuildStore(t)
	sender := portmocks.NewMockMessageSender(t)
	replier := portmocks.NewMockChannelReplier(t)

	reg := registry.New(store, log, registry.Options{})
	format := notifier.NewFormatter(time.UTC)
	r := New(Deps{
		Registry:  reg,
		Notifier:  notifier.New(sender, log),
		Commands:  command.NewInterpreter(reg, dir, format, log),
		Directory: dir,
		Replier:   replier,
		Formatter: format,
		Logger:    log,
	}, Config{
		Recipients: recipients,
		SelfID:     func() string { return selfUserID },
		Now:        func() time.Time { return time.Date(2025, time.March, 4, 15, 4, 5, 0, time.UTC) },
	})
	return harness{router: r, reg: reg, store: store, sender: sender, replier: replier}
}

func TestReadyLoadsAndResyncs(t *testing.T) {
	t.Parallel()

	dir := staticDirectory{guilds: []domain.Guild{{ID: "g1", Name: "A"}, {ID: "g2", Name: "B"}}}
	h := newHarness(t, dir, "op")

	h.store.EXPECT().LoadGuildIDs(mock.Anything).Return([]string{"stale"}, nil).Once()
	h.store.EXPECT().SaveGuildIDs(mock.Anything, []string{"g1", "g2"}).Return(nil).Once()

	if h.router.State() != StateDisconnected {
		t.Fatalf("expected initial state disconnected, got %s", h.router.State())
	}
	if err := h.router.Dispatch(context.Background(), Ready{Guilds: dir.guilds}); err != nil {
		t.Fatalf("dispatch ready: %v", err)
	}
	if h.router.State() != StateReady {
		t.Fatalf("expected ready state, got %s", h.router.State())
	}
	if got := strings.Join(h.reg.List(), ","); got != "g1,g2" {
		t.Fatalf("unexpected monitored set %q", got)
	}
}

func TestReadyWithCorruptStateFails(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticDirectory{}, "op")
	h.store.EXPECT().LoadGuildIDs(mock.Anything).Return(nil, ports.ErrStateCorrupt).Once()

	err := h.router.Dispatch(context.Background(), Ready{})
	var corrupt *registry.CorruptStateError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected corrupt state error, got %v", err)
	}
	if h.router.State() != StateDisconnected {
		t.Fatalf("state must stay disconnected, got %s", h.router.State())
	}
}

func TestMemberJoinedInUnmonitoredGuildIsIgnored(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticDirectory{}, "op1", "op2")

	err := h.router.Dispatch(context.Background(), MemberJoined{
		Guild:  domain.Guild{ID: "other", Name: "Other"},
		Member: domain.Member{ID: "u1", Username: "alice"},
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	// The sender mock fails the test on any unexpected SendDirect call.
}

func TestMemberJoinedNotifiesEveryRecipient(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticDirectory{}, "op1", "op2")
	h.store.EXPECT().SaveGuildIDs(mock.Anything, []string{"g1"}).Return(nil).Once()
	h.reg.Add(context.Background(), "g1")

	matchesJoin := mock.MatchedBy(func(content string) bool {
		return strings.Contains(content, "`alice`") &&
			strings.Contains(content, "`u1`") &&
			strings.Contains(content, "Gophers") &&
			strings.Contains(content, "March 4, 2025") &&
			strings.Contains(content, "03:04:05 PM")
	})
	h.sender.EXPECT().SendDirect(mock.Anything, "op1", matchesJoin).Return(errors.New("dm closed")).Once()
	h.sender.EXPECT().SendDirect(mock.Anything, "op2", matchesJoin).Return(nil).Once()

	err := h.router.Dispatch(context.Background(), MemberJoined{
		Guild:  domain.Guild{ID: "g1", Name: "Gophers"},
		Member: domain.Member{ID: "u1", Username: "alice"},
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestGuildJoinedAddsAndNotifies(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticDirectory{}, "op")
	h.store.EXPECT().SaveGuildIDs(mock.Anything, []string{"g9"}).Return(nil).Once()
	h.sender.EXPECT().
		SendDirect(mock.Anything, "op", mock.MatchedBy(func(content string) bool {
			return strings.Contains(content, "started monitoring **New Guild**")
		})).
		Return(nil).Once()

	if err := h.router.Dispatch(context.Background(), GuildJoined{Guild: domain.Guild{ID: "g9", Name: "New Guild"}}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !h.reg.Contains("g9") {
		t.Fatal("expected joined guild to be monitored")
	}
}

func TestGuildLeftRemovesAndNotifiesOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticDirectory{}, "op1", "op2")
	h.store.EXPECT().SaveGuildIDs(mock.Anything, []string{"g1"}).Return(nil).Once()
	h.store.EXPECT().SaveGuildIDs(mock.Anything, []string{}).Return(nil).Once()
	h.reg.Add(context.Background(), "g1")

	removed := mock.MatchedBy(func(content string) bool {
		return strings.Contains(content, "removed from server: **Gone** (ID: g1)")
	})
	h.sender.EXPECT().SendDirect(mock.Anything, "op1", removed).Return(nil).Once()
	h.sender.EXPECT().SendDirect(mock.Anything, "op2", removed).Return(nil).Once()

	left := GuildLeft{Guild: domain.Guild{ID: "g1", Name: "Gone"}}
	if err := h.router.Dispatch(context.Background(), left); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	// A second removal of the same guild is a no-op.
	if err := h.router.Dispatch(context.Background(), left); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if h.reg.Contains("g1") {
		t.Fatal("expected guild to be removed")
	}
}

func TestMessagesFromStrangersAndSelfAreIgnored(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticDirectory{}, "op")

	for _, author := range []string{"stranger", selfUserID, ""} {
		err := h.router.Dispatch(context.Background(), MessageReceived{Message: domain.Message{
			ID: "m1", ChannelID: "c1", AuthorID: author, Content: "help",
		}})
		if err != nil {
			t.Fatalf("dispatch from %q: %v", author, err)
		}
	}
}

func TestAllowedOperatorCommandIsAnswered(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticDirectory{}, "op")
	h.replier.EXPECT().Reply(mock.Anything, "c1", "m1", notifier.HelpText).Return(nil).Once()

	err := h.router.Dispatch(context.Background(), MessageReceived{Message: domain.Message{
		ID: "m1", ChannelID: "c1", AuthorID: "op", Content: "  HELP ",
	}})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestNonCommandTextIsIgnored(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticDirectory{}, "op")

	err := h.router.Dispatch(context.Background(), MessageReceived{Message: domain.Message{
		ID: "m1", ChannelID: "c1", AuthorID: "op", Content: "good morning",
	}})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestRunProcessesEventsInOrder(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticDirectory{}, "op")
	h.store.EXPECT().SaveGuildIDs(mock.Anything, []string{"g1"}).Return(nil).Once()
	h.store.EXPECT().SaveGuildIDs(mock.Anything, []string{}).Return(nil).Once()
	h.sender.EXPECT().SendDirect(mock.Anything, "op", mock.Anything).Return(nil).Times(2)

	events := make(chan Event, 3)
	events <- GuildJoined{Guild: domain.Guild{ID: "g1", Name: "A"}}
	events <- GuildLeft{Guild: domain.Guild{ID: "g1", Name: "A"}}
	close(events)

	if err := h.router.Run(context.Background(), events); err != nil {
		t.Fatalf("run: %v", err)
	}
	if h.reg.Len() != 0 {
		t.Fatalf("expected empty registry, got %v", h.reg.List())
	}
}

func TestRunStopsOnReadyFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticDirectory{}, "op")
	h.store.EXPECT().LoadGuildIDs(mock.Anything).Return(nil, ports.ErrStateCorrupt).Once()

	events := make(chan Event, 1)
	events <- Ready{}

	err := h.router.Run(context.Background(), events)
	var corrupt *registry.CorruptStateError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected corrupt state error from run, got %v", err)
	}
}

func TestDisconnectedResetsState(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticDirectory{}, "op")
	h.store.EXPECT().LoadGuildIDs(mock.Anything).Return(nil, ports.ErrStateNotFound).Once()
	h.store.EXPECT().SaveGuildIDs(mock.Anything, []string{}).Return(nil).Twice()

	if err := h.router.Dispatch(context.Background(), Ready{}); err != nil {
		t.Fatalf("dispatch ready: %v", err)
	}
	if h.router.State() != StateReady {
		t.Fatalf("expected ready, got %s", h.router.State())
	}
	if err := h.router.Dispatch(context.Background(), Disconnected{}); err != nil {
		t.Fatalf("dispatch disconnected: %v", err)
	}
	if h.router.State() != StateDisconnected {
		t.Fatalf("expected disconnected, got %s", h.router.State())
	}
}

func TestResumedRestoresReadyAndResyncs(t *testing.T) {
	t.Parallel()

	dir := staticDirectory{guilds: []domain.Guild{{ID: "g1", Name: "A"}, {ID: "g2", Name: "B"}}}
	h := newHarness(t, dir, "op")
	h.store.EXPECT().SaveGuildIDs(mock.Anything, []string{"g1"}).Return(nil).Once()
	h.store.EXPECT().SaveGuildIDs(mock.Anything, []string{"g1", "g2"}).Return(nil).Once()
	h.reg.Add(context.Background(), "g1")

	if err := h.router.Dispatch(context.Background(), Disconnected{}); err != nil {
		t.Fatalf("dispatch disconnected: %v", err)
	}
	if err := h.router.Dispatch(context.Background(), Resumed{}); err != nil {
		t.Fatalf("dispatch resumed: %v", err)
	}
	if h.router.State() != StateReady {
		t.Fatalf("expected ready after resume, got %s", h.router.State())
	}
	if got := strings.Join(h.reg.List(), ","); got != "g1,g2" {
		t.Fatalf("unexpected monitored set %q", got)
	}
}

func TestResumedWithEmptyCacheKeepsMonitoredSet(t *testing.T) {
	t.Parallel()

	h := newHarness(t, staticDirectory{}, "op")
	h.store.EXPECT().SaveGuildIDs(mock.Anything, []string{"g1"}).Return(nil).Once()
	h.reg.Add(context.Background(), "g1")

	if err := h.router.Dispatch(context.Background(), Resumed{}); err != nil {
		t.Fatalf("dispatch resumed: %v", err)
	}
	if h.router.State() != StateReady {
		t.Fatalf("expected ready after resume, got %s", h.router.State())
	}
	if !h.reg.Contains("g1") {
		t.Fatal("resume with an empty cache must not clear the monitored set")
	}
}
