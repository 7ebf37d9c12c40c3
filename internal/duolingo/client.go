package duolingo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/lingo-digest-bot/internal/constants"
	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

// Client talks to the Duolingo web API. It holds no credentials; every call
// takes the Session it should run under.
type Client struct {
	baseURL string
	ttsURL  string
	timeout time.Duration
	logger  *zap.Logger
}

func NewClient(baseURL, ttsURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = constants.APIConfig.DuolingoBaseURL
	}
	if ttsURL == "" {
		ttsURL = constants.APIConfig.DuolingoTTSURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ttsURL:  strings.TrimRight(ttsURL, "/"),
		timeout: constants.Timeouts.LearningService,
		logger:  logger,
	}
}

// doRequest performs one call and returns the raw body of a 2xx response.
// Non-2xx statuses come back as *errors.APIError carrying the status code.
func (c *Client) doRequest(ctx context.Context, httpClient *http.Client, method, path string, params url.Values) (*http.Response, []byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, nil, errors.NewAPIError("failed to create request", 500, map[string]any{
			"path": path,
		}).WithCause(err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.DownloadConfig.UserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, errors.NewAPIError("request failed", 0, map[string]any{
			"path": path,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, errors.NewAPIError("failed to read response", resp.StatusCode, map[string]any{
			"path": path,
		}).WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview := body
		if len(preview) > constants.StringLimits.ErrorBodyBytes {
			preview = preview[:constants.StringLimits.ErrorBodyBytes]
		}
		return resp, body, errors.NewAPIError(
			fmt.Sprintf("Duolingo API error: %s", resp.Status),
			resp.StatusCode,
			map[string]any{
				"path": path,
				"body": string(preview),
			},
		)
	}

	return resp, body, nil
}

func decodeJSON(body []byte, dest any) error {
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
