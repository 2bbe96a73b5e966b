package commands

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/rheyna/duncord/pkg/logging"
)

// HistoryCommand renders the rename sequence of a character.
func HistoryCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	loggerFactory := logging.GetGlobalLoggerFactory()
	logger := loggerFactory.CreateCommandLogger("history")
	logger.Info("History command executed", map[string]interface{}{
		"user_id":    m.Author.ID,
		"username":   m.Author.Username,
		"guild_id":   m.GuildID,
		"channel_id": m.ChannelID,
		"args_count": len(args),
	})

	if len(args) == 0 {
		s.ChannelMessageSend(m.ChannelID, "❌ Please provide a character name.\n\n**Usage:** `!history <nickname>`")
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

	history, err := recordStore.NicknameHistory(identity.CharacterID)
	if err != nil {
		logger.Error("Nickname history lookup failed", err, map[string]interface{}{
			"character_id": identity.CharacterID,
		})
		s.ChannelMessageSendEmbed(m.ChannelID, embeds.Error("Lookup Failed", "Could not query the name history."))
		return
	}

	if _, err := s.ChannelMessageSendEmbed(m.ChannelID, embeds.NicknameHistory(identity, history)); err != nil {
		logger.Error("Failed to send history embed", err, map[string]interface{}{
			"channel_id": m.ChannelID,
			"guild_id":   m.GuildID,
		})
	}
}
