package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fr0stylo/guildwatch/internal/adapters/jsonfile"
	"github.com/fr0stylo/guildwatch/internal/app/ports"
	portmocks "github.com/fr0stylo/guildwatch/internal/app/ports/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAddTwiceWritesOnce(t *testing.T) {
	store := portmocks.NewMockGuildStore(t)
	reg := New(store, discardLogger(), Options{})

	store.EXPECT().SaveGuildIDs(mock.Anything, []string{"g1"}).Return(nil).Once()

	if !reg.Add(context.Background(), "g1") {
		t.Fatal("expected first add to change the set")
	}
	if reg.Add(context.Background(), "g1") {
		t.Fatal("expected second add to be a no-op")
	}
	if reg.Len() != 1 {
		t.Fatalf("expected size 1, got %d", reg.Len())
	}
}

func TestRemoveAbsentDoesNotWrite(t *testing.T) {
	store := portmocks.NewMockGuildStore(t)
	reg := New(store, discardLogger(), Options{})

	if reg.Remove(context.Background(), "missing") {
		t.Fatal("expected remove of absent id to be a no-op")
	}
}

func TestRemovePresentPersistsRemainder(t *testing.T) {
	store := portmocks.NewMockGuildStore(t)
	reg := New(store, discardLogger(), Options{})

	store.EXPECT().SaveGuildIDs(mock.Anything, []string{"g1"}).Return(nil).Once()
	store.EXPECT().SaveGuildIDs(mock.Anything, []string{"g1", "g2"}).Return(nil).Once()
	store.EXPECT().SaveGuildIDs(mock.Anything, []string{"g2"}).Return(nil).Once()

	reg.Add(context.Background(), "g1")
	reg.Add(context.Background(), "g2")
	if !reg.Remove(context.Background(), "g1") {
		t.Fatal("expected remove to change the set")
	}
	if reg.Contains("g1") || !reg.Contains("g2") {
		t.Fatalf("unexpected contents %v", reg.List())
	}
}

func TestWriteFailureKeepsInMemoryState(t *testing.T) {
	store := portmocks.NewMockGuildStore(t)
	reg := New(store, discardLogger(), Options{})

	store.EXPECT().SaveGuildIDs(mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	if !reg.Add(context.Background(), "g1") {
		t.Fatal("expected add to report change despite write failure")
	}
	if !reg.Contains("g1") {
		t.Fatal("in-memory set must stay authoritative after failed write")
	}
}

func TestLoadMissingCreatesEmptyState(t *testing.T) {
	store := portmocks.NewMockGuildStore(t)
	reg := New(store, discardLogger(), Options{})

	store.EXPECT().LoadGuildIDs(mock.Anything).Return(nil, ports.ErrStateNotFound).Once()
	store.EXPECT().SaveGuildIDs(mock.Anything, []string{}).Return(nil).Once()

	if err := reg.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("expected empty registry, got %v", reg.List())
	}
}

func TestLoadCorruptReturnsCorruptStateError(t *testing.T) {
	store := portmocks.NewMockGuildStore(t)
	reg := New(store, discardLogger(), Options{})

	store.EXPECT().LoadGuildIDs(mock.Anything).Return(nil, ports.ErrStateCorrupt).Once()

	err := reg.Load(context.Background())
	var corrupt *CorruptStateError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptStateError, got %v", err)
	}
	if !errors.Is(err, ports.ErrStateCorrupt) {
		t.Fatalf("expected wrapped ErrStateCorrupt, got %v", err)
	}
}

func TestLoadOtherErrorIsWrapped(t *testing.T) {
	store := portmocks.NewMockGuildStore(t)
	reg := New(store, discardLogger(), Options{})
	readErr := errors.New("permission denied")

	store.EXPECT().LoadGuildIDs(mock.Anything).Return(nil, readErr).Once()

	err := reg.Load(context.Background())
	if !errors.Is(err, readErr) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
	var corrupt *CorruptStateError
	if errors.As(err, &corrupt) {
		t.Fatal("read failure must not be reported as corruption")
	}
}

func TestResyncAllReplacesAndPersistsOnce(t *testing.T) {
	store := portmocks.NewMockGuildStore(t)
	reg := New(store, discardLogger(), Options{})

	store.EXPECT().SaveGuildIDs(mock.Anything, []string{"old"}).Return(nil).Once()
	store.EXPECT().SaveGuildIDs(mock.Anything, []string{"g1", "g2"}).Return(nil).Once()

	reg.Add(context.Background(), "old")
	size, err := reg.ResyncAll(context.Background(), []string{"g1", "g2", "g1"})
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if size != 2 {
		t.Fatalf("expected size 2, got %d", size)
	}
	if reg.Contains("old") {
		t.Fatal("resync must replace the set wholesale")
	}
}

func TestResyncAllHonoursCancellation(t *testing.T) {
	store := portmocks.NewMockGuildStore(t)
	reg := New(store, discardLogger(), Options{ResyncPace: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := reg.ResyncAll(ctx, []string{"g1"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if reg.Len() != 0 {
		t.Fatal("cancelled resync must leave the set unchanged")
	}
}

func TestListIsSnapshot(t *testing.T) {
	store := portmocks.NewMockGuildStore(t)
	reg := New(store, discardLogger(), Options{})
	store.EXPECT().SaveGuildIDs(mock.Anything, mock.Anything).Return(nil)

	reg.Add(context.Background(), "g1")
	reg.Add(context.Background(), "g2")

	listed := reg.List()
	for _, id := range listed {
		reg.Remove(context.Background(), id)
	}
	if len(listed) != 2 {
		t.Fatalf("snapshot changed under mutation: %v", listed)
	}
	if reg.Len() != 0 {
		t.Fatalf("expected all ids removed, got %v", reg.List())
	}
}

func TestResyncThenLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "monitored_servers.json")
	ctx := context.Background()

	first := New(jsonfile.NewStore(path), discardLogger(), Options{})
	if err := first.Load(ctx); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	want := []string{"g1", "g2"}
	if _, err := first.ResyncAll(ctx, want); err != nil {
		t.Fatalf("resync: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if string(raw) != "[\n  \"g1\",\n  \"g2\"\n]" {
		t.Fatalf("unexpected persisted content %q", raw)
	}

	second := New(jsonfile.NewStore(path), discardLogger(), Options{})
	if err := second.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := second.List()
	sort.Strings(got)
	if len(got) != 2 || got[0] != "g1" || got[1] != "g2" {
		t.Fatalf("round trip mismatch: %v", got)
	}
}

func TestLoadCorruptFileFromDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "monitored_servers.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := New(jsonfile.NewStore(path), discardLogger(), Options{}).Load(context.Background())
	var corrupt *CorruptStateError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptStateError, got %v", err)
	}
}
