package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/fr0stylo/guildwatch/internal/app/domain"
)

const (
	dateLayout = "January 2, 2006"
	timeLayout = "03:04:05 PM"
)

// Static operator-facing texts.
const (
	HelpText = `**Available Commands:**
• **list** - Show all servers I'm monitoring
• **refresh** - Manually add all servers to monitoring
• **copy <username> <userId>** - Display formatted user info for copying
• **help** - Show this help message

**Note:** I automatically monitor ALL servers where I'm present!
When users join, I'll send you a DM with copyable username and user ID.`

	CopyUsage     = "Usage: `copy <username> <userId>` - Sends formatted user info"
	EmptyList     = "I'm not monitoring any servers yet. Use the 'refresh' command to add all servers to monitoring!"
	RefreshStart  = "🔄 Adding all servers to monitoring..."
	listHeader    = "**Servers I'm monitoring:**"
	unknownServer = "Unknown Server"
)

// Formatter renders notification and reply texts. It has no side effects;
// the same input always yields the same string.
type Formatter struct {
	location *time.Location
}

// NewFormatter renders timestamps in loc (UTC when nil).
func NewFormatter(loc *time.Location) Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return Formatter{location: loc}
}

// MemberJoined renders the join notification in the formatter's timezone.
func (f Formatter) MemberJoined(event domain.NotificationEvent) string {
	at := event.Timestamp.In(f.location)
	return fmt.Sprintf(`🎉 **New Member Joined!**

📆 **Date:** %s
🕐 **Time:** %s
👤 **Username:** `+"`%s`"+`
🆔 **User ID:** `+"`%s`"+`
🏠 **Server:** %s`,
		at.Format(dateLayout),
		at.Format(timeLayout),
		event.MemberUsername,
		event.MemberID,
		event.GuildName,
	)
}

// GuildJoined announces that monitoring started for guild.
func (f Formatter) GuildJoined(guild domain.Guild) string {
	return fmt.Sprintf("🤖 I've joined and started monitoring **%s**. I'll notify you of new members joining.", guild.Name)
}

// GuildRemoved announces that the account was removed from guild.
func (f Formatter) GuildRemoved(guild domain.Guild) string {
	return fmt.Sprintf("❌ I was removed from server: **%s** (ID: %s) and stopped monitoring it", guild.Name, guild.ID)
}

// UserInfo renders the copy-friendly block for the copy command.
func (f Formatter) UserInfo(username, userID string) string {
	return fmt.Sprintf(`📋 **User Info:**

👤 **Username:** `+"`%s`"+`
🆔 **User ID:** `+"`%s`"+`

💡 *Tap and hold the gray text above to copy*`, username, userID)
}

// ListEntry is one line of the list reply. Name is empty for guilds the
// session can no longer resolve.
type ListEntry struct {
	ID   string
	Name string
}

// GuildList renders the list reply, or the empty-list text.
func (f Formatter) GuildList(entries []ListEntry) string {
	if len(entries) == 0 {
		return EmptyList
	}
	var b strings.Builder
	b.WriteString(listHeader)
	b.WriteString("\n")
	for _, entry := range entries {
		if entry.Name == "" {
			fmt.Fprintf(&b, "• %s (ID: %s) - I may have been removed\n", unknownServer, entry.ID)
			continue
		}
		fmt.Fprintf(&b, "• %s (ID: %s)\n", entry.Name, entry.ID)
	}
	return b.String()
}

// RefreshDone reports the monitored count after a refresh.
func (f Formatter) RefreshDone(count int) string {
	return fmt.Sprintf("✅ Complete! Now monitoring all %d servers.", count)
}
