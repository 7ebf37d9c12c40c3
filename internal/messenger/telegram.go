package messenger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/lingo-digest-bot/internal/constants"
	"github.com/kapu/lingo-digest-bot/internal/util"
	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

// TelegramClient sends plain text through the Bot API sendMessage method.
type TelegramClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewTelegramClient(baseURL, token string, logger *zap.Logger) *TelegramClient {
	if baseURL == "" {
		baseURL = constants.APIConfig.TelegramBaseURL
	}
	return &TelegramClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: constants.Timeouts.Delivery,
		},
		logger: logger,
	}
}

func (c *TelegramClient) Name() string {
	return "telegram"
}

// SendMessage posts text to chatID. Text longer than Telegram's limit is cut.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID, text string) error {
	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", util.TruncateString(text, constants.StringLimits.TelegramText-3))

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	// the token is part of the path, keep it out of error context
	redacted := fmt.Sprintf("%s/bot***/sendMessage", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.NewAPIError("failed to create request", 500, map[string]any{
			"url": redacted,
		}).WithCause(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to send message", zap.Error(err), zap.String("chat_id", chatID))
		return errors.NewAPIError("request failed", 500, map[string]any{
			"url": redacted,
		}).WithCause(stripToken(err, c.token))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, int64(constants.StringLimits.ErrorBodyBytes)))

	var parsed telegramResponse
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !parsed.OK {
		c.logger.Error("Telegram rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("description", parsed.Description),
			zap.String("chat_id", chatID),
		)
		return errors.NewAPIError(
			fmt.Sprintf("Telegram API error: %s", resp.Status),
			resp.StatusCode,
			map[string]any{
				"url":         redacted,
				"description": parsed.Description,
			},
		)
	}

	return nil
}

func stripToken(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), token, "***"))
}
