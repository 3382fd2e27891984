// Package assistant wraps the chat backend that finishes integration setup
// conversationally.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"jarvis-integrations-layer/internal/ports"

	"github.com/rs/zerolog"
)

// Client calls the chat backend over HTTP.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates an assistant client. Completion conversations can take a
// while, so the timeout is generous.
func NewClient(baseURL, authToken string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger.With().Str("component", "assistant_client").Logger(),
	}
}

// NewClientWithHTTPClient creates an assistant client using the given HTTP
// client, for tests.
func NewClientWithHTTPClient(baseURL, authToken string, httpClient *http.Client, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		authToken:  authToken,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "assistant_client").Logger(),
	}
}

type chatRequest struct {
	Message               string `json:"message"`
	UserID                string `json:"user_id"`
	RequestID             string `json:"request_id"`
	ServiceName           string `json:"service_name"`
	IntegrationInProgress bool   `json:"integration_in_progress"`
	Timestamp             int64  `json:"timestamp"`
}

// CompleteIntegration sends the completion message to the backend's chat
// endpoint and blocks until it answers. The payload travels as a multipart
// form with a single json_data field, matching the backend's contract.
func (c *Client) CompleteIntegration(ctx context.Context, userID, service, requestID, message string) (*ports.AssistantReply, error) {
	payload, err := json.Marshal(chatRequest{
		Message:               message,
		UserID:                userID,
		RequestID:             requestID,
		ServiceName:           service,
		IntegrationInProgress: true,
		Timestamp:             time.Now().UnixMilli(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("json_data", string(payload)); err != nil {
		return nil, fmt.Errorf("write form field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", &body)
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	c.logger.Info().
		Str("userId", userID).
		Str("service", service).
		Str("requestId", requestID).
		Msg("Calling assistant backend for integration completion")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call assistant backend: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read assistant response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("assistant backend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var reply ports.AssistantReply
	if err := json.Unmarshal(respBody, &reply); err != nil {
		return nil, fmt.Errorf("decode assistant response: %w", err)
	}

	return &reply, nil
}
