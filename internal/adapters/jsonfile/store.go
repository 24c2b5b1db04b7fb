package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fr0stylo/guildwatch/internal/app/ports"
)

const defaultPath = "monitored_servers.json"

// Store persists the monitored guild IDs as a pretty-printed JSON array.
type Store struct {
	path string
}

var _ ports.GuildStore = (*Store)(nil)

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultPath
	}
	return &Store{path: path}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) LoadGuildIDs(_ context.Context) ([]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ports.ErrStateNotFound
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var ids []string
	decoder := json.NewDecoder(bytes.NewReader(raw))
	if err := decoder.Decode(&ids); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ports.ErrStateCorrupt, s.path, err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("%w: trailing data in %s", ports.ErrStateCorrupt, s.path)
	}
	if ids == nil {
		// A literal null decodes cleanly but is not a guild list.
		return nil, fmt.Errorf("%w: %s does not contain a JSON array", ports.ErrStateCorrupt, s.path)
	}
	return ids, nil
}

// SaveGuildIDs writes ids through a temp file that is renamed over the target.
func (s *Store) SaveGuildIDs(_ context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	payload, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("encode guild ids: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}
