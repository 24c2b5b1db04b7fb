package domain

import "time"

// Guild is a community the session account belongs to.
type Guild struct {
	ID   string
	Name string
}

// Member is a user who joined a guild.
type Member struct {
	ID       string
	Username string
}

// Message is an inbound text message.
type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	Content   string
}

// NotificationEvent describes one member join in a monitored guild.
type NotificationEvent struct {
	GuildID        string
	GuildName      string
	MemberUsername string
	MemberID       string
	Timestamp      time.Time
}

// NewNotificationEvent builds the notification payload for a member join.
func NewNotificationEvent(guild Guild, member Member, at time.Time) NotificationEvent {
	return NotificationEvent{
		GuildID:        guild.ID,
		GuildName:      guild.Name,
		MemberUsername: member.Username,
		MemberID:       member.ID,
		Timestamp:      at,
	}
}

// GuildIDs returns the IDs of guilds in order.
func GuildIDs(guilds []Guild) []string {
	ids := make([]string, 0, len(guilds))
	for _, guild := range guilds {
		ids = append(ids, guild.ID)
	}
	return ids
}
