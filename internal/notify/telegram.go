package notify

import (
	"context"
	"fmt"
	"strings"

	"CryptoSignalBot/config"
	"CryptoSignalBot/internal/models"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramNotifier pushes signals to a Telegram chat.
type TelegramNotifier struct {
	bot    *tgbot.BotAPI
	chatID int64
	logger *zap.Logger
}

func NewTelegramNotifier(cfg config.TelegramConfig, logger *zap.Logger) (*TelegramNotifier, error) {
	bot, err := tgbot.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: cfg.ChatID,
		logger: logger.Named("telegram"),
	}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, signal models.SignalModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.bot.Send(tgbot.NewMessage(n.chatID, formatSignal(signal))); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	n.logger.Debug("signal delivered", zap.String("symbol", signal.Symbol))
	return nil
}

// formatSignal renders the chat message. Kept separate from delivery so
// the layout is testable without a bot token.
func formatSignal(signal models.SignalModel) string {
	var b strings.Builder

	marker := "⏸"
	switch signal.Direction {
	case models.SignalBuy:
		marker = "🟢"
	case models.SignalSell:
		marker = "🔴"
	}

	fmt.Fprintf(&b, "%s %s %s @ %.4f\n", marker, strings.ToUpper(string(signal.Direction)), signal.Symbol, signal.Price)
	fmt.Fprintf(&b, "strategy: %s (%s), confidence %.2f\n", signal.Strategy, signal.Timeframe, signal.Confidence)
	for _, vote := range signal.Votes {
		fmt.Fprintf(&b, "- %s [%s]: %s (%s)\n", vote.Screen, vote.Timeframe, vote.Direction, vote.Detail)
	}
	if signal.Rationale != "" {
		b.WriteString(signal.Rationale)
	}
	return b.String()
}
