// Package sentiment adapts sentiment classifiers. The feedback pipeline only
// depends on the Classifier interface.
package sentiment

import (
	"context"
	"errors"

	"feedback-backend/internal/models"
)

// ErrClassifierFailure marks a classification that produced no usable label.
var ErrClassifierFailure = errors.New("sentiment classification failed")

type Classifier interface {
	Classify(ctx context.Context, text string) (models.Sentiment, error)
}

// ClassifierFunc lets a plain function act as a Classifier.
type ClassifierFunc func(ctx context.Context, text string) (models.Sentiment, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) (models.Sentiment, error) {
	return f(ctx, text)
}
