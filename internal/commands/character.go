package commands

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/rheyna/duncord/pkg/logging"
)

// CharacterCommand looks up a character identity by nickname and renders its
// profile, falling back to obsoleted rows when no live row claims the name.
func CharacterCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	loggerFactory := logging.GetGlobalLoggerFactory()
	logger := loggerFactory.CreateCommandLogger("char")
	logger.Info("Character command executed", map[string]interface{}{
		"user_id":    m.Author.ID,
		"username":   m.Author.Username,
		"guild_id":   m.GuildID,
		"channel_id": m.ChannelID,
		"args_count": len(args),
	})

	if len(args) == 0 {
		s.ChannelMessageSend(m.ChannelID, "❌ Please provide a character name.\n\n**Usage:** `!char <nickname>`\n**Example:** `!char Stormcaller`")
		return
	}

	nickname := strings.Join(args, " ")
	identity, err := recordStore.FindByNickname(nickname, false)
	if err == nil && identity == nil {
		// No live claim; the name may have been renamed away.
		identity, err = recordStore.FindByNickname(nickname, true)
	}
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
		logger.Warn("Nickname history lookup failed", map[string]interface{}{
			"character_id": identity.CharacterID,
			"error":        err.Error(),
		})
	}

	if _, err := s.ChannelMessageSendEmbed(m.ChannelID, embeds.CharacterProfile(identity, history)); err != nil {
		logger.Error("Failed to send character embed", err, map[string]interface{}{
			"channel_id": m.ChannelID,
			"guild_id":   m.GuildID,
		})
	}
}
