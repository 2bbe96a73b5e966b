package commands

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/rheyna/duncord/internal/version"
	"github.com/rheyna/duncord/pkg/logging"
)

var startTime = time.Now()

func AboutCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	loggerFactory := logging.GetGlobalLoggerFactory()
	logger := loggerFactory.CreateCommandLogger("about")
	logger.Info("About command executed", map[string]interface{}{
		"user_id":    m.Author.ID,
		"username":   m.Author.Username,
		"guild_id":   m.GuildID,
		"channel_id": m.ChannelID,
	})

	uptime := time.Since(startTime)
	uptimeStr := formatUptime(uptime)

	// memory usage
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	memoryUsage := fmt.Sprintf("%.2f MB", float64(memStats.Alloc)/1024/1024)

	// fetch build/version info
	info := version.Get()
	buildTime := info.BuildTime
	if t, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
		buildTime = t.UTC().Format("02 Jan 2006 15:04 UTC")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Bot Information",
		Description: "Dungeon clear ranking archivist.",
		Color:       0x00ff00,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bot Name", Value: "Duncord", Inline: true},
			{Name: "Version", Value: code(info.Version), Inline: true},
			{Name: "Commit", Value: code(info.ShortCommit), Inline: true},
			{Name: "Uptime", Value: uptimeStr, Inline: true},
			{Name: "Memory Usage", Value: memoryUsage, Inline: true},
			{Name: "Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "Go Version", Value: runtime.Version(), Inline: true},
			{Name: "Platform", Value: fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH), Inline: true},
			{Name: "Build Time", Value: buildTime, Inline: true},
			{Name: "Ping", Value: fmt.Sprintf("%dms", s.HeartbeatLatency().Milliseconds()), Inline: true},
		},
	}

	_, err := s.ChannelMessageSendEmbed(m.ChannelID, embed)
	if err != nil {
		logger.Error("Failed to send about embed", err, map[string]interface{}{
			"channel_id": m.ChannelID,
			"guild_id":   m.GuildID,
		})
	}
}

// formatUptime formats the uptime duration into a human-readable string
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	} else if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
