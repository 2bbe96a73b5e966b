package commands

import (
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/rheyna/duncord/pkg/logging"
)

// syncRunning guards against overlapping manual harvest runs.
var syncRunning atomic.Bool

// SyncCommand triggers a full harvest pass. Restricted to the bot owner; the
// pass runs in the background and reports back to the invoking channel.
func SyncCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	loggerFactory := logging.GetGlobalLoggerFactory()
	logger := loggerFactory.CreateCommandLogger("sync")
	logger.Info("Sync command executed", map[string]interface{}{
		"user_id":    m.Author.ID,
		"username":   m.Author.Username,
		"guild_id":   m.GuildID,
		"channel_id": m.ChannelID,
	})

	if botConfig == nil || m.Author.ID != botConfig.OwnerID {
		logger.Warn("Sync command denied - not bot owner", map[string]interface{}{
			"user_id":  m.Author.ID,
			"guild_id": m.GuildID,
		})
		s.ChannelMessageSend(m.ChannelID, "❌ This command is restricted to the bot owner only.")
		return
	}

	if !syncRunning.CompareAndSwap(false, true) {
		s.ChannelMessageSendEmbed(m.ChannelID, embeds.Warning("Harvest Busy", "A harvest pass is already running."))
		return
	}

	categories := syncService.Categories()
	s.ChannelMessageSendEmbed(m.ChannelID, embeds.SyncStarted(categories))

	go func() {
		defer syncRunning.Store(false)
		start := time.Now()
		err := syncService.SyncAll()
		if err != nil {
			logger.Error("Manual harvest failed", err, map[string]interface{}{
				"user_id": m.Author.ID,
			})
		}
		s.ChannelMessageSendEmbed(m.ChannelID, embeds.SyncFinished(time.Since(start), err))
	}()
}
