package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/friendbook/internal/wizard"
)

const sendMessageTimeout = 10 * time.Second

// skipKeyboard offers /skip as a one-tap button on the description prompt.
var skipKeyboard = &models.ReplyKeyboardMarkup{
	Keyboard:        [][]models.KeyboardButton{{{Text: "/skip"}}},
	ResizeKeyboard:  true,
	OneTimeKeyboard: true,
}

func sendText(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string) {
	sendMessage(ctx, b, log, &bot.SendMessageParams{ChatID: chatID, Text: text})
}

func sendMessage(ctx context.Context, b *bot.Bot, log *slog.Logger, params *bot.SendMessageParams) bool {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	if _, err := b.SendMessage(sendCtx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", params.ChatID)
		return false
	}
	return true
}

// sendReplies delivers wizard replies in order, translating keyboard hints.
func sendReplies(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, replies []wizard.Reply) {
	for _, r := range replies {
		params := &bot.SendMessageParams{ChatID: chatID, Text: r.Text}
		switch r.Keyboard {
		case wizard.KeyboardSkip:
			params.ReplyMarkup = skipKeyboard
		case wizard.KeyboardRemove:
			params.ReplyMarkup = &models.ReplyKeyboardRemove{RemoveKeyboard: true}
		}
		sendMessage(ctx, b, log, params)
	}
}
