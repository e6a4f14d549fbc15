package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeedbackSummary_Count(t *testing.T) {
	t.Run("Should count every listed label and nothing else", func(t *testing.T) {
		summary := FeedbackSummary{Total: 7, Positive: 3, Neutral: 2, Negative: 1}
		var sum int64
		for _, label := range Sentiments {
			sum += summary.Count(label)
		}
		assert.Equal(t, int64(6), sum)
		assert.Equal(t, int64(3), summary.Count(SentimentPositive))
		assert.Equal(t, int64(0), summary.Count("mixed"))
	})
}
