package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fr0stylo/guildwatch/internal/app/domain"
	"github.com/fr0stylo/guildwatch/internal/app/ports"
	"github.com/fr0stylo/guildwatch/internal/notifier"
)

type Verb string

const (
	VerbList    Verb = "list"
	VerbRefresh Verb = "refresh"
	VerbCopy    Verb = "copy"
	VerbHelp    Verb = "help"
)

// Command is one parsed operator message.
type Command struct {
	Verb Verb
	Args []string
}

// Parse reads the verb from the first whitespace-separated token, ignoring
// case. Unknown verbs and empty text report ok=false.
func Parse(text string) (Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{}, false
	}
	verb := Verb(strings.ToLower(fields[0]))
	switch verb {
	case VerbList, VerbRefresh, VerbCopy, VerbHelp:
		return Command{Verb: verb, Args: fields[1:]}, true
	default:
		return Command{}, false
	}
}

// Registry is the slice of the guild registry the interpreter needs.
type Registry interface {
	List() []string
	ResyncAll(ctx context.Context, ids []string) (int, error)
}

// Responder replies on the channel a command arrived on.
type Responder interface {
	Reply(ctx context.Context, content string) error
}

// Interpreter executes operator commands against the registry.
type Interpreter struct {
	registry  Registry
	directory ports.GuildDirectory
	format    notifier.Formatter
	log       *slog.Logger
}

func NewInterpreter(registry Registry, directory ports.GuildDirectory, format notifier.Formatter, log *slog.Logger) *Interpreter {
	if log == nil {
		log = slog.Default()
	}
	return &Interpreter{registry: registry, directory: directory, format: format, log: log}
}

// Execute runs cmd and sends its replies through out.
func (i *Interpreter) Execute(ctx context.Context, cmd Command, out Responder) error {
	switch cmd.Verb {
	case VerbList:
		return out.Reply(ctx, i.list())
	case VerbRefresh:
		return i.refresh(ctx, out)
	case VerbCopy:
		if len(cmd.Args) < 2 {
			i.log.DebugContext(ctx, "copy command missing arguments", "args", len(cmd.Args))
			return out.Reply(ctx, notifier.CopyUsage)
		}
		return out.Reply(ctx, i.format.UserInfo(cmd.Args[0], cmd.Args[1]))
	case VerbHelp:
		return out.Reply(ctx, notifier.HelpText)
	default:
		return nil
	}
}

func (i *Interpreter) list() string {
	ids := i.registry.List()
	entries := make([]notifier.ListEntry, 0, len(ids))
	for _, id := range ids {
		entry := notifier.ListEntry{ID: id}
		if guild, ok := i.directory.Guild(id); ok {
			entry.Name = guild.Name
		}
		entries = append(entries, entry)
	}
	return i.format.GuildList(entries)
}

func (i *Interpreter) refresh(ctx context.Context, out Responder) error {
	if err := out.Reply(ctx, notifier.RefreshStart); err != nil {
		i.log.WarnContext(ctx, "Failed to acknowledge refresh", "error", err)
	}
	count, err := i.registry.ResyncAll(ctx, domain.GuildIDs(i.directory.Guilds()))
	if err != nil {
		return fmt.Errorf("refresh monitored guilds: %w", err)
	}
	return out.Reply(ctx, i.format.RefreshDone(count))
}
