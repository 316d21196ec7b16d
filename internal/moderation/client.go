// Package moderation scores comment text against a translation and a
// toxicity-classification backend and turns the result into a comment status.
package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"webmail/internal/config"
	apperrors "webmail/internal/errors"
	"webmail/internal/model"
)

// ToxicThreshold is the score above which any label marks a comment toxic.
const ToxicThreshold = 0.5

const maxResponseBytes = 1 << 20

// Moderator decides the initial status of a comment. It never fails: backend
// problems degrade to model.CommentStatusPending.
type Moderator interface {
	Moderate(ctx context.Context, text string) model.CommentStatus
}

// Client calls the translation and toxicity endpoints over HTTP.
type Client struct {
	translateURL string
	toxicityURL  string
	apiKey       string
	timeout      time.Duration
	http         *http.Client
	logger       *zap.Logger
}

var _ Moderator = (*Client)(nil)

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type translation struct {
	TranslationText string `json:"translation_text"`
}

// LabelScore is one classifier output.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewClient creates a moderation client. A zero timeout falls back to five seconds.
func NewClient(cfg config.ModerationConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		translateURL: cfg.TranslateURL,
		toxicityURL:  cfg.ToxicityURL,
		apiKey:       cfg.APIKey,
		timeout:      timeout,
		http:         &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// Moderate translates text to the canonical language, scores it and returns
// CommentStatusToxic when any label scores above ToxicThreshold, otherwise
// CommentStatusPending.
func (c *Client) Moderate(ctx context.Context, text string) model.CommentStatus {
	status, err := c.classify(ctx, text)
	if err != nil {
		c.logger.Warn("Moderation failed, comment left for manual review",
			zap.Error(err),
			zap.Int("text_length", len(text)))
		return model.CommentStatusPending
	}
	return status
}

func (c *Client) classify(ctx context.Context, text string) (model.CommentStatus, error) {
	canonical, err := c.translate(ctx, text)
	if err != nil {
		return "", err
	}

	scores, err := c.score(ctx, canonical)
	if err != nil {
		return "", err
	}

	for _, s := range scores {
		if s.Score > ToxicThreshold {
			c.logger.Info("Comment flagged as toxic",
				zap.String("label", s.Label),
				zap.Float64("score", s.Score))
			return model.CommentStatusToxic, nil
		}
	}
	return model.CommentStatusPending, nil
}

// translate returns the translated text, or the original text when the
// backend answers with anything other than a usable translation list.
func (c *Client) translate(ctx context.Context, text string) (string, error) {
	if c.translateURL == "" {
		return text, nil
	}

	body, err := c.post(ctx, c.translateURL, text)
	if err != nil {
		return "", fmt.Errorf("%w: translate: %v", apperrors.ErrModerationUnavailable, err)
	}

	if !isList(body) {
		return text, nil
	}
	var out []translation
	if err := json.Unmarshal(body, &out); err != nil || len(out) == 0 || out[0].TranslationText == "" {
		c.logger.Debug("Unusable translation payload, using original text")
		return text, nil
	}
	return out[0].TranslationText, nil
}

func (c *Client) score(ctx context.Context, text string) ([]LabelScore, error) {
	if c.toxicityURL == "" {
		return nil, fmt.Errorf("%w: toxicity endpoint not configured", apperrors.ErrModerationUnavailable)
	}

	body, err := c.post(ctx, c.toxicityURL, text)
	if err != nil {
		return nil, fmt.Errorf("%w: classify: %v", apperrors.ErrModerationUnavailable, err)
	}
	if !isList(body) {
		return nil, fmt.Errorf("%w: classify: unexpected payload", apperrors.ErrModerationUnavailable)
	}

	var out [][]LabelScore
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: classify: decode: %v", apperrors.ErrModerationUnavailable, err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// post sends {"inputs": text} and returns the raw response body. Each call
// runs under its own timeout derived from ctx.
func (c *Client) post(ctx context.Context, url, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func isList(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
