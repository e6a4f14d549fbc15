package sentiment

import (
	"context"
	"strings"
	"unicode"

	"feedback-backend/internal/models"
)

// Polarity bounds for the neutral band.
const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1
)

var polarity = map[string]float64{
	"amazing": 0.6, "awesome": 1.0, "best": 1.0, "brilliant": 0.9, "clean": 0.37,
	"comfortable": 0.4, "convenient": 0.4, "delicious": 1.0, "delightful": 1.0, "easy": 0.43,
	"efficient": 0.5, "enjoy": 0.4, "enjoyed": 0.4, "excellent": 1.0, "exceptional": 0.67,
	"fantastic": 0.4, "fast": 0.2, "favorite": 0.5, "fine": 0.42, "friendly": 0.38,
	"glad": 0.5, "good": 0.7, "great": 0.8, "happy": 0.8, "helpful": 0.5,
	"impressive": 1.0, "like": 0.2, "love": 0.5, "loved": 0.7, "lovely": 0.5,
	"nice": 0.6, "perfect": 1.0, "pleasant": 0.73, "polite": 0.3, "quick": 0.33,
	"recommend": 0.4, "reliable": 0.5, "satisfied": 0.5, "smooth": 0.4, "superb": 1.0,
	"thanks": 0.2, "useful": 0.3, "well": 0.3, "wonderful": 1.0,

	"angry": -0.5, "annoying": -0.8, "awful": -1.0, "bad": -0.7, "broken": -0.4,
	"confusing": -0.3, "difficult": -0.5, "dirty": -0.6, "disappointed": -0.75, "disappointing": -0.6,
	"disgusting": -1.0, "expensive": -0.5, "fail": -0.5, "failed": -0.5, "frustrating": -0.4,
	"hate": -0.8, "horrible": -1.0, "poor": -0.4, "problem": -0.3, "rude": -0.6,
	"sad": -0.5, "slow": -0.3, "terrible": -1.0, "unhappy": -0.6, "unhelpful": -0.5,
	"useless": -0.5, "waste": -0.5, "worse": -0.4, "worst": -1.0, "wrong": -0.5,
}

var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.2, "extremely": 1.5, "so": 1.2, "super": 1.3, "incredibly": 1.5,
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "isn't": true, "wasn't": true, "don't": true,
	"didn't": true, "doesn't": true, "can't": true, "won't": true, "hardly": true,
}

// Lexicon scores text by averaging the polarity of the words it knows.
// Negation flips and dampens the next scored word; intensifiers scale it.
type Lexicon struct{}

func NewLexicon() *Lexicon {
	return &Lexicon{}
}

func (l *Lexicon) Classify(ctx context.Context, text string) (models.Sentiment, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Label(l.Score(text)), nil
}

// Score returns the polarity of text in [-1, 1]. Unknown text scores 0.
func (l *Lexicon) Score(text string) float64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	var (
		sum, n   float64
		modifier = 1.0
		negated  bool
	)
	for _, w := range words {
		if negations[w] {
			negated = true
			continue
		}
		if factor, ok := intensifiers[w]; ok {
			modifier *= factor
			continue
		}
		p, ok := polarity[w]
		if !ok {
			continue
		}
		p *= modifier
		if negated {
			p *= -0.5
		}
		sum += max(-1, min(1, p))
		n++
		modifier, negated = 1.0, false
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// Label maps a polarity score onto the three sentiment labels.
func Label(score float64) models.Sentiment {
	switch {
	case score > positiveThreshold:
		return models.SentimentPositive
	case score < negativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}
