package embed

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/rheyna/duncord/pkg/database/models"
)

// EmbedBuilder provides basic embed creation functionality
type EmbedBuilder interface {
	Success(title, description string) *discordgo.MessageEmbed
	Error(title, description string) *discordgo.MessageEmbed
	Info(title, description string) *discordgo.MessageEmbed
	Warning(title, description string) *discordgo.MessageEmbed
}

// RankingEmbedBuilder provides ranking-specific embed creation functionality
type RankingEmbedBuilder interface {
	EmbedBuilder
	CharacterProfile(identity *models.CharacterIdentity, history []string) *discordgo.MessageEmbed
	NicknameHistory(identity *models.CharacterIdentity, history []string) *discordgo.MessageEmbed
	ClearRecords(identity *models.CharacterIdentity, records []models.ClearRecord) *discordgo.MessageEmbed
	AccountOverview(main *models.CharacterIdentity, characters []models.CharacterIdentity) *discordgo.MessageEmbed
	SyncStarted(categories []int) *discordgo.MessageEmbed
	SyncFinished(duration time.Duration, err error) *discordgo.MessageEmbed
}

// EmbedFactory creates embed builders
type EmbedFactory interface {
	CreateRankingEmbedBuilder() RankingEmbedBuilder
	CreateBasicEmbedBuilder() EmbedBuilder
}
