package messenger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/lingo-digest-bot/internal/config"
	"github.com/kapu/lingo-digest-bot/internal/constants"
	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

// Messenger delivers a text message to a chat.
type Messenger interface {
	Name() string
	SendMessage(ctx context.Context, chatID, text string) error
}

// New builds the messenger selected by cfg.Messenger.Kind.
func New(cfg *config.Config, logger *zap.Logger) (Messenger, error) {
	switch cfg.Messenger.Kind {
	case "telegram":
		return NewTelegramClient(cfg.Telegram.BaseURL, cfg.Telegram.Token, logger), nil
	case "iris":
		return NewIrisClient(cfg.Iris.BaseURL, logger), nil
	}
	return nil, errors.NewConfigurationError(fmt.Sprintf("unknown messenger %q", cfg.Messenger.Kind), "MESSENGER")
}

// Outgoing is one message waiting to be delivered.
type Outgoing struct {
	Label string
	Text  string
}

// DeliveryReport counts the outcome of one Deliver call.
type DeliveryReport struct {
	Sent    int
	Failed  int
	Skipped bool
	Errors  []error
}

// Dispatcher sends messages one by one and never stops on a failed send.
type Dispatcher struct {
	messenger Messenger
	chatID    string
	logger    *zap.Logger
}

// NewDispatcher returns a dispatcher. A nil messenger or an empty chatID
// makes every Deliver a no-op.
func NewDispatcher(messenger Messenger, chatID string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		messenger: messenger,
		chatID:    chatID,
		logger:    logger,
	}
}

func (d *Dispatcher) Enabled() bool {
	return d.messenger != nil && d.chatID != ""
}

func (d *Dispatcher) Deliver(ctx context.Context, messages ...Outgoing) DeliveryReport {
	report := DeliveryReport{}
	if !d.Enabled() {
		report.Skipped = true
		d.logger.Info("No delivery destination configured, skipping", zap.Int("messages", len(messages)))
		return report
	}

	for _, msg := range messages {
		if msg.Text == "" {
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, constants.Timeouts.Delivery)
		err := d.messenger.SendMessage(sendCtx, d.chatID, msg.Text)
		cancel()

		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, errors.NewDeliveryError(
				fmt.Sprintf("failed to deliver %s", msg.Label), d.messenger.Name(), errors.StatusCode(err), err))
			d.logger.Warn("Message delivery failed",
				zap.String("label", msg.Label),
				zap.String("messenger", d.messenger.Name()),
				zap.Error(err),
			)
			continue
		}

		report.Sent++
		d.logger.Debug("Message delivered", zap.String("label", msg.Label))
	}

	return report
}
