package embed

// DefaultEmbedFactory implements EmbedFactory interface
type DefaultEmbedFactory struct{}

// NewEmbedFactory creates a new DefaultEmbedFactory instance
func NewEmbedFactory() EmbedFactory {
	return &DefaultEmbedFactory{}
}

// CreateRankingEmbedBuilder creates a RankingEmbedBuilder instance
func (f *DefaultEmbedFactory) CreateRankingEmbedBuilder() RankingEmbedBuilder {
	return NewRankingEmbedBuilder()
}

// CreateBasicEmbedBuilder creates a basic EmbedBuilder instance
func (f *DefaultEmbedFactory) CreateBasicEmbedBuilder() EmbedBuilder {
	return NewRankingEmbedBuilder() // RankingEmbeds implements EmbedBuilder interface
}

// Global factory instance for convenience
var globalFactory EmbedFactory = NewEmbedFactory()

// CreateRankingEmbeds creates a RankingEmbedBuilder using the global factory
func CreateRankingEmbeds() RankingEmbedBuilder {
	return globalFactory.CreateRankingEmbedBuilder()
}

// CreateBasicEmbeds creates a basic EmbedBuilder using the global factory
func CreateBasicEmbeds() EmbedBuilder {
	return globalFactory.CreateBasicEmbedBuilder()
}
