package models

import "time"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Sentiments lists every label in display order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Feedback is a single submission. Sentiment is nil until classification
// succeeds, which keeps "unclassified" apart from a genuine neutral label.
type Feedback struct {
	ID        string     `bson:"_id" json:"id"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Username  string     `bson:"username" json:"username"`
	Rating    int        `bson:"rating" json:"rating"`
	Comment   string     `bson:"comment" json:"comment"`
	Sentiment *Sentiment `bson:"sentiment" json:"sentiment"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

// FilterCriteria narrows an admin listing. Set fields are AND-combined.
type FilterCriteria struct {
	Sentiment *Sentiment `json:"sentiment,omitempty" validate:"omitempty,oneof=positive neutral negative"`
	Rating    *int       `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Search    string     `json:"search,omitempty"`
}

func (c FilterCriteria) IsEmpty() bool {
	return c.Sentiment == nil && c.Rating == nil && c.Search == ""
}

// FeedbackSummary is the raw aggregate a store computes in one pass.
type FeedbackSummary struct {
	Total     int64 `bson:"total" db:"total"`
	RatingSum int64 `bson:"rating_sum" db:"rating_sum"`
	Positive  int64 `bson:"positive" db:"positive"`
	Neutral   int64 `bson:"neutral" db:"neutral"`
	Negative  int64 `bson:"negative" db:"negative"`
}

func (s FeedbackSummary) Count(label Sentiment) int64 {
	switch label {
	case SentimentPositive:
		return s.Positive
	case SentimentNeutral:
		return s.Neutral
	case SentimentNegative:
		return s.Negative
	}
	return 0
}

type Stats struct {
	TotalUsers            int64               `json:"total_users"`
	TotalFeedback         int64               `json:"total_feedback"`
	AverageRating         float64             `json:"average_rating"`
	SentimentDistribution map[Sentiment]int64 `json:"sentiment_distribution"`
}
