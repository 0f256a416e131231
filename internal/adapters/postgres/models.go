package postgres

import (
	"github.com/jsamuelsen/quote-aggregator/internal/domain"
)

// quoteModel is the quotes table row. Text carries a unique index so the
// database, not application code, is the final word on deduplication.
type quoteModel struct {
	ID                 string `gorm:"column:id;type:uuid;primaryKey"`
	Text               string `gorm:"column:quote_text;type:varchar(512);uniqueIndex:idx_quotes_text;not null"`
	Author             string `gorm:"column:author"`
	Category           string `gorm:"column:category"`
	Source             string `gorm:"column:source;not null;index"`
	Image              string `gorm:"column:image"`
	Character          string `gorm:"column:character"`
	CharacterDirection string `gorm:"column:character_direction"`
	Votes              int    `gorm:"column:votes;not null;default:0"`
}

func (quoteModel) TableName() string {
	return "quotes"
}

// voteModel is the votes ledger row. The composite unique index on
// (quote_id, voter_id) is the one-vote-per-voter guarantee under race.
type voteModel struct {
	ID      string `gorm:"column:id;type:uuid;primaryKey"`
	QuoteID string `gorm:"column:quote_id;type:uuid;not null;uniqueIndex:idx_votes_quote_voter"`
	VoterID string `gorm:"column:voter_id;not null;uniqueIndex:idx_votes_quote_voter"`
}

func (voteModel) TableName() string {
	return "votes"
}

func quoteModelFromDomain(quote *domain.Quote) quoteModel {
	return quoteModel{
		ID:                 quote.ID,
		Text:               quote.Text,
		Author:             quote.Author,
		Category:           quote.Category,
		Source:             string(quote.Source),
		Image:              quote.Image,
		Character:          quote.Character,
		CharacterDirection: quote.CharacterDirection,
		Votes:              quote.Votes,
	}
}

func (m quoteModel) toDomain() *domain.Quote {
	return &domain.Quote{
		ID:                 m.ID,
		Text:               m.Text,
		Author:             m.Author,
		Category:           m.Category,
		Source:             domain.Source(m.Source),
		Image:              m.Image,
		Character:          m.Character,
		CharacterDirection: m.CharacterDirection,
		Votes:              m.Votes,
	}
}
