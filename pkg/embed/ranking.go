package embed

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/rheyna/duncord/pkg/database/models"
)

// RankingEmbeds implements RankingEmbedBuilder for the identity graph views
type RankingEmbeds struct{}

// NewRankingEmbedBuilder creates a new RankingEmbeds instance
func NewRankingEmbedBuilder() RankingEmbedBuilder {
	return &RankingEmbeds{}
}

// Success creates a success embed
func (e *RankingEmbeds) Success(title, description string) *discordgo.MessageEmbed {
	return baseEmbed(title, description, 0x00ff00)
}

// Error creates an error embed
func (e *RankingEmbeds) Error(title, description string) *discordgo.MessageEmbed {
	return baseEmbed(title, description, 0xff0000)
}

// Info creates an info embed
func (e *RankingEmbeds) Info(title, description string) *discordgo.MessageEmbed {
	return baseEmbed(title, description, 0x7289da)
}

// Warning creates a warning embed
func (e *RankingEmbeds) Warning(title, description string) *discordgo.MessageEmbed {
	return baseEmbed(title, description, 0xffaa00)
}

// CharacterProfile renders one identity row with its linkage state
func (e *RankingEmbeds) CharacterProfile(identity *models.CharacterIdentity, history []string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("👤 %s", identity.Nickname),
		Color:     0x7289da,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Character ID", Value: fmt.Sprintf("%d", identity.CharacterID), Inline: true},
			{Name: "Job", Value: optString(identity.Job), Inline: true},
			{Name: "Level", Value: optInt(identity.Level), Inline: true},
			{Name: "Trophies", Value: optInt(identity.Trophy), Inline: true},
			{Name: "Status", Value: nicknameStatus(identity.NicknameObsoleted), Inline: true},
		},
	}

	if identity.AccountID != nil && *identity.AccountID != 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Account", Value: fmt.Sprintf("%d", *identity.AccountID), Inline: true,
		})
	}
	if identity.HouseName != nil {
		house := *identity.HouseName
		if identity.StarHouseDate != nil {
			house = fmt.Sprintf("%s (since %s)", house, formatDateInt(*identity.StarHouseDate))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "⭐ House", Value: house, Inline: false,
		})
	}
	if len(history) > 1 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Known Names", Value: strings.Join(history, " → "), Inline: false,
		})
	}
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Last seen %s", identity.LastUpdatedTime.Format("2006-01-02 15:04")),
	}
	return embed
}

// NicknameHistory renders the full rename sequence of a character
func (e *RankingEmbeds) NicknameHistory(identity *models.CharacterIdentity, history []string) *discordgo.MessageEmbed {
	if len(history) == 0 {
		return e.Info(
			fmt.Sprintf("📜 Name History: %s", identity.Nickname),
			"No renames on record.",
		)
	}

	var sb strings.Builder
	for i, name := range history {
		marker := "•"
		if i == len(history)-1 {
			marker = "➤"
		}
		sb.WriteString(fmt.Sprintf("%s **%s**\n", marker, name))
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📜 Name History: %s", identity.Nickname),
		Description: sb.String(),
		Color:       0x7289da,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// ClearRecords renders up to ten recent dungeon clears of a character
func (e *RankingEmbeds) ClearRecords(identity *models.CharacterIdentity, records []models.ClearRecord) *discordgo.MessageEmbed {
	if len(records) == 0 {
		return e.Info(
			fmt.Sprintf("🏆 Clears: %s", identity.Nickname),
			"No dungeon clears on record.",
		)
	}

	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("🏆 Clears: %s", identity.Nickname),
		Color:     0x00ff00,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	limit := len(records)
	if limit > 10 {
		limit = 10
	}
	for _, rec := range records[:limit] {
		role := "member"
		if rec.LeaderID == identity.CharacterID {
			role = "leader"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("Dungeon %d — Rank %d", rec.CategoryID, rec.Rank),
			Value: fmt.Sprintf("Time **%s** · Cleared %s · Party of %d (%s)",
				formatClearTime(rec.ClearTime), formatDateInt(rec.ClearDate), rec.MemberCount, role),
			Inline: false,
		})
	}
	return embed
}

// AccountOverview renders every character linked to one account
func (e *RankingEmbeds) AccountOverview(main *models.CharacterIdentity, characters []models.CharacterIdentity) *discordgo.MessageEmbed {
	var sb strings.Builder
	for _, c := range characters {
		marker := "•"
		if main != nil && c.CharacterID == main.CharacterID {
			marker = "👑"
		}
		sb.WriteString(fmt.Sprintf("%s **%s** — %s Lv.%s\n",
			marker, c.Nickname, optString(c.Job), optInt(c.Level)))
	}
	title := "🔗 Account Roster"
	if main != nil {
		title = fmt.Sprintf("🔗 Account Roster: %s", main.Nickname)
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: sb.String(),
		Color:       0x7289da,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// SyncStarted announces a manual harvest run
func (e *RankingEmbeds) SyncStarted(categories []int) *discordgo.MessageEmbed {
	parts := make([]string, 0, len(categories))
	for _, id := range categories {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return e.Info("🔄 Harvest Started", fmt.Sprintf("Syncing categories: %s", strings.Join(parts, ", ")))
}

// SyncFinished reports the outcome of a manual harvest run
func (e *RankingEmbeds) SyncFinished(duration time.Duration, err error) *discordgo.MessageEmbed {
	if err != nil {
		return e.Error("❌ Harvest Failed", fmt.Sprintf("Failed after %s: %v", duration.Round(time.Second), err))
	}
	return e.Success("✅ Harvest Complete", fmt.Sprintf("Finished in %s.", duration.Round(time.Second)))
}

func baseEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func nicknameStatus(state int) string {
	switch state {
	case models.NicknameRenamedAway:
		return "renamed away"
	case models.NicknameRecovered:
		return "recovered (uncertain)"
	default:
		return "live"
	}
}

func optString(s *string) string {
	if s == nil {
		return "?"
	}
	return *s
}

func optInt(n *int) string {
	if n == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *n)
}

// formatDateInt renders a YYYYMMDD integer as YYYY.MM.DD
func formatDateInt(d int) string {
	return fmt.Sprintf("%04d.%02d.%02d", d/10000, d/100%100, d%100)
}

// formatClearTime renders seconds as mm:ss or h:mm:ss
func formatClearTime(seconds int) string {
	if seconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
