package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"
)

const (
	userAgent = "moodtune/1.0"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20

	// DefaultSentimentModel is the three-class sentiment model (LABEL_0..2).
	DefaultSentimentModel = "cardiffnlp/twitter-roberta-base-sentiment-latest"

	// DefaultEmotionModel is the seven-class emotion model.
	DefaultEmotionModel = "j-hartmann/emotion-english-distilroberta-base"
)

// HTTPConfig configures a remote inference endpoint.
type HTTPConfig struct {
	BaseURL        string
	Token          string
	SentimentModel string
	EmotionModel   string
	Timeout        time.Duration
	RPS            float64
	Retries        uint
}

// HTTPClient calls a hosted inference API that takes {"inputs": text} and
// answers with any of the shapes Decode accepts.
type HTTPClient struct {
	cfg        HTTPConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// retryableError marks responses worth another attempt.
type retryableError struct {
	status int
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("inference API returned %d", e.status)
}

// NewHTTPClient creates a client, filling unset fields with defaults.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	if cfg.SentimentModel == "" {
		cfg.SentimentModel = DefaultSentimentModel
	}
	if cfg.EmotionModel == "" {
		cfg.EmotionModel = DefaultEmotionModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 5
	}
	if cfg.Retries == 0 {
		cfg.Retries = 3
	}
	return &HTTPClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), 1),
	}
}

// ClassifySentiment runs the sentiment model.
func (c *HTTPClient) ClassifySentiment(ctx context.Context, text string) (Output, error) {
	return c.classify(ctx, c.cfg.SentimentModel, text)
}

// ClassifyEmotions runs the emotion model.
func (c *HTTPClient) ClassifyEmotions(ctx context.Context, text string) (Output, error) {
	return c.classify(ctx, c.cfg.EmotionModel, text)
}

func (c *HTTPClient) classify(ctx context.Context, model, text string) (Output, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return Output{}, fmt.Errorf("encoding request: %w", err)
	}
	reqURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + model

	var body []byte
	err = retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			var err error
			body, err = c.doSingleRequest(ctx, reqURL, payload)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.Retries),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var re *retryableError
			return errors.As(err, &re)
		}),
	)
	if err != nil {
		return Output{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, model, err)
	}

	out, err := Decode(body)
	if err != nil {
		return Output{}, fmt.Errorf("decoding %s response: %w", model, err)
	}
	return out, nil
}

// doSingleRequest performs a single HTTP request.
func (c *HTTPClient) doSingleRequest(ctx context.Context, reqURL string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxResponseBytes)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &retryableError{status: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("inference API returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}
