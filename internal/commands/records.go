package commands

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/rheyna/duncord/pkg/logging"
)

const recordsLimit = 10

// RecordsCommand renders the recent dungeon clears a character took part in,
// whether as leader or roster member.
func RecordsCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	loggerFactory := logging.GetGlobalLoggerFactory()
	logger := loggerFactory.CreateCommandLogger("records")
	logger.Info("Records command executed", map[string]interface{}{
		"user_id":    m.Author.ID,
		"username":   m.Author.Username,
		"guild_id":   m.GuildID,
		"channel_id": m.ChannelID,
		"args_count": len(args),
	})

	if len(args) == 0 {
		s.ChannelMessageSend(m.ChannelID, "❌ Please provide a character name.\n\n**Usage:** `!records <nickname>`")
		return
	}

	nickname := strings.Join(args, " ")
	identity, err := recordStore.FindByNickname(nickname, true)
	if err != nil {
		logger.Error("Character lookup failed", err, map[string]interface{}{
			"nickname": nickname,
			"user_id":  m.Author.ID,
		})
		s.ChannelMessageSendEmbed(m.ChannelID, embeds.Error("Lookup Failed", "Could not query the character database."))
		return
	}
	if identity == nil {
		s.ChannelMessageSendEmbed(m.ChannelID, embeds.Warning("Not Found", "No character named **"+nickname+"** on record."))
		return
	}

	records, err := recordStore.RecentClearsByCharacter(identity.CharacterID, recordsLimit)
	if err != nil {
		logger.Error("Clear record lookup failed", err, map[string]interface{}{
			"character_id": identity.CharacterID,
		})
		s.ChannelMessageSendEmbed(m.ChannelID, embeds.Error("Lookup Failed", "Could not query the clear records."))
		return
	}

	if _, err := s.ChannelMessageSendEmbed(m.ChannelID, embeds.ClearRecords(identity, records)); err != nil {
		logger.Error("Failed to send records embed", err, map[string]interface{}{
			"channel_id": m.ChannelID,
			"guild_id":   m.GuildID,
		})
	}
}
