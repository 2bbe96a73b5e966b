package commands

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/rheyna/duncord/pkg/logging"
)

const commandPrefix = "!"

// MessageHandler routes prefixed messages to their command handlers
func MessageHandler(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore messages from the bot itself
	if m.Author.ID == s.State.User.ID {
		return
	}
	if !strings.HasPrefix(m.Content, commandPrefix) {
		return
	}

	fields := strings.Fields(strings.TrimPrefix(m.Content, commandPrefix))
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "char", "character":
		CharacterCommand(s, m, args)
	case "history":
		HistoryCommand(s, m, args)
	case "records", "clears":
		RecordsCommand(s, m, args)
	case "account":
		AccountCommand(s, m, args)
	case "sync":
		SyncCommand(s, m, args)
	case "version":
		VersionCommand(s, m)
	case "about":
		AboutCommand(s, m)
	default:
		logger := logging.GetGlobalLoggerFactory().CreateCommandLogger("router")
		logger.Debug("Unknown command ignored", map[string]interface{}{
			"command":  command,
			"user_id":  m.Author.ID,
			"guild_id": m.GuildID,
		})
	}
}
