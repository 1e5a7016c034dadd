package commands

import (
	"log"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
)

// How long a flow prompt waits for the user before giving up.
const promptTimeout = 2 * time.Minute

func ParseGuildID(guildID string) int64 {
	id, err := strconv.ParseInt(guildID, 10, 64)
	if err != nil {
		log.Printf("Failed to parse guild ID '%s': %v", guildID, err)
		return 0
	}
	return id
}

func ParseSnowflake(id string) int64 {
	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func respondText(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		log.Printf("Failed to send message to channel %s: %v", channelID, err)
	}
}

// hasRole reports whether the message author carries the given guild role.
func hasRole(m *discordgo.MessageCreate, roleID int64) bool {
	if m.Member == nil || roleID == 0 {
		return false
	}
	for _, r := range m.Member.Roles {
		if ParseSnowflake(r) == roleID {
			return true
		}
	}
	return false
}

// chunkLines splits entries into messages that respect Discord's 2000
// character limit.
func chunkLines(entries []string) []string {
	var messages []string
	var buffer string
	for _, entry := range entries {
		if len(buffer)+len(entry)+1 > 2000 {
			messages = append(messages, buffer)
			buffer = ""
		}
		if buffer != "" {
			buffer += "\n"
		}
		buffer += entry
	}
	if buffer != "" {
		messages = append(messages, buffer)
	}
	return messages
}
