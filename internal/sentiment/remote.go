package sentiment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"feedback-backend/internal/models"

	"github.com/go-resty/resty/v2"
)

// Remote calls an external sentiment service:
//
//	POST {baseURL}/api/v1/sentiment  {"text": "..."}  ->  {"sentiment": "positive", "score": 0.8}
type Remote struct {
	client *resty.Client
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

func NewRemote(baseURL string, timeout time.Duration) *Remote {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	return &Remote{client: client}
}

func (c *Remote) Classify(ctx context.Context, text string) (models.Sentiment, error) {
	var result classifyResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(classifyRequest{Text: text}).
		SetResult(&result).
		Post("/api/v1/sentiment")
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("sentiment service returned status %d: %s", resp.StatusCode(), resp.String())
	}

	label := models.Sentiment(result.Sentiment)
	if !label.Valid() {
		return "", fmt.Errorf("sentiment service returned unknown label %q", result.Sentiment)
	}
	return label, nil
}
