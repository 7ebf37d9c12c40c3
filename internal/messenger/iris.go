package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/kapu/lingo-digest-bot/internal/constants"
	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

// IrisClient posts text replies into a KakaoTalk room through the Iris bridge.
type IrisClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewIrisClient(baseURL string, logger *zap.Logger) *IrisClient {
	return &IrisClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: constants.Timeouts.Delivery,
		},
		logger: logger,
	}
}

func (c *IrisClient) Name() string {
	return "iris"
}

func (c *IrisClient) SendMessage(ctx context.Context, room, message string) error {
	req := ReplyRequest{
		Type: "text",
		Room: room,
		Data: message,
	}

	if err := c.doRequest(ctx, http.MethodPost, "/reply", req); err != nil {
		c.logger.Error("Failed to send message",
			zap.Error(err),
			zap.String("room", room),
		)
		return err
	}

	return nil
}

func (c *IrisClient) doRequest(ctx context.Context, method, path string, reqBody any) error {
	url := c.baseURL + path

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return errors.NewAPIError("failed to marshal request", 400, map[string]any{
			"url": url,
		}).WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(jsonData))
	if err != nil {
		return errors.NewAPIError("failed to create request", 500, map[string]any{
			"url": url,
		}).WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewAPIError("request failed", 500, map[string]any{
			"url": url,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, int64(constants.StringLimits.ErrorBodyBytes)))
		return errors.NewAPIError(
			fmt.Sprintf("Iris API error: %s", resp.Status),
			resp.StatusCode,
			map[string]any{
				"url":  url,
				"body": string(bodyBytes),
			},
		)
	}

	return nil
}
