// Package credentials obtains room-access tokens from a token server over HTTP.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
)

const defaultTimeout = 5 * time.Second

// HTTPTokenClient requests tokens from GET {baseURL}/token/{identity}/{room}
type HTTPTokenClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// Ensure HTTPTokenClient implements the CredentialProvider interface
var _ repositories.CredentialProvider = (*HTTPTokenClient)(nil)

type tokenResponse struct {
	Token string `json:"token"`
	Error string `json:"error"`
}

// NewHTTPTokenClient creates a client for the token server at baseURL
func NewHTTPTokenClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*HTTPTokenClient, error) {
	if baseURL == "" {
		return nil, errors.New("token server url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid token server url: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPTokenClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// RequestToken implements CredentialProvider interface
func (c *HTTPTokenClient) RequestToken(ctx context.Context, identity, room string) (string, error) {
	endpoint := fmt.Sprintf("%s/token/%s/%s", c.baseURL, url.PathEscape(identity), url.PathEscape(room))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug("Requesting room token", zap.String("room", room), zap.String("identity", identity))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var payload tokenResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if decodeErr == nil && payload.Error != "" {
			msg = payload.Error
		}
		return "", fmt.Errorf("token server returned %d: %s", resp.StatusCode, msg)
	}

	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if payload.Token == "" {
		return "", errors.New("token server returned an empty token")
	}

	return payload.Token, nil
}
