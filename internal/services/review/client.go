package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/common"
	"github.com/rstatelabs/playnews/internal/interfaces"
	"github.com/rstatelabs/playnews/internal/models"
)

// Client calls the external review workflow over HTTP. It never returns a
// Go error from SubmitForReview; transport and protocol failures are
// reported in the response Error field so callers treat them uniformly
// with workflow rejections.
type Client struct {
	endpoint string
	apiKey   string
	user     string
	client   *http.Client
	logger   arbor.ILogger
}

// NewClient creates a review client from config.
func NewClient(cfg *common.ReviewConfig, logger arbor.ILogger) interfaces.ReviewClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		user:     cfg.User,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type workflowRequest struct {
	Inputs       workflowInputs `json:"inputs"`
	ResponseMode string         `json:"response_mode"`
	User         string         `json:"user"`
}

type workflowInputs struct {
	PlayRawNewsID uint64 `json:"play_raw_news_id"`
}

// SubmitForReview runs the blocking review workflow for one stored record.
func (c *Client) SubmitForReview(ctx context.Context, recordID uint64) *models.ReviewResponse {
	if c.endpoint == "" {
		return &models.ReviewResponse{Error: "review endpoint not configured"}
	}

	payload := workflowRequest{
		Inputs:       workflowInputs{PlayRawNewsID: recordID},
		ResponseMode: "blocking",
		User:         c.user,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return &models.ReviewResponse{Error: fmt.Sprintf("failed to encode request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &models.ReviewResponse{Error: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Int64("record_id", int64(recordID)).Msg("Review workflow request failed")
		return &models.ReviewResponse{Error: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		errMsg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(text))
		c.logger.Error().Int64("record_id", int64(recordID)).Str("error", errMsg).Msg("Review workflow returned an error status")
		return &models.ReviewResponse{Error: errMsg}
	}

	var result models.ReviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return &models.ReviewResponse{Error: fmt.Sprintf("failed to decode response: %v", err)}
	}

	c.logger.Debug().Int64("record_id", int64(recordID)).Bool("approved", result.IsApproved()).Msg("Review workflow call complete")
	return &result
}
