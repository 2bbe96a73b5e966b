package commands

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/rheyna/duncord/pkg/database/models"
	"github.com/rheyna/duncord/pkg/logging"
)

// AccountCommand resolves a nickname to its account and lists every linked
// character, main character first.
func AccountCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	loggerFactory := logging.GetGlobalLoggerFactory()
	logger := loggerFactory.CreateCommandLogger("account")
	logger.Info("Account command executed", map[string]interface{}{
		"user_id":    m.Author.ID,
		"username":   m.Author.Username,
		"guild_id":   m.GuildID,
		"channel_id": m.ChannelID,
		"args_count": len(args),
	})

	if len(args) == 0 {
		s.ChannelMessageSend(m.ChannelID, "❌ Please provide a character name.\n\n**Usage:** `!account <nickname>`")
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
	if identity.AccountID == nil || *identity.AccountID == 0 {
		s.ChannelMessageSendEmbed(m.ChannelID, embeds.Info("No Linkage", "**"+identity.Nickname+"** has no discovered account linkage yet."))
		return
	}

	characters, err := recordStore.FindByAccount(*identity.AccountID)
	if err != nil {
		logger.Error("Account fan-out failed", err, map[string]interface{}{
			"account_id": *identity.AccountID,
		})
		s.ChannelMessageSendEmbed(m.ChannelID, embeds.Error("Lookup Failed", "Could not query the account roster."))
		return
	}

	var main *models.CharacterIdentity
	if identity.MainCharacterID != nil {
		for i := range characters {
			if characters[i].CharacterID == *identity.MainCharacterID {
				main = &characters[i]
				break
			}
		}
	}

	if _, err := s.ChannelMessageSendEmbed(m.ChannelID, embeds.AccountOverview(main, characters)); err != nil {
		logger.Error("Failed to send account embed", err, map[string]interface{}{
			"channel_id": m.ChannelID,
			"guild_id":   m.GuildID,
		})
	}
}
