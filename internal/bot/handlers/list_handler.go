package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewListHandler returns a handler for /list.
func NewListHandler(deps HandlerDeps) bot.HandlerFunc {
	return listHandler{deps}.Handle
}

type listHandler struct {
	deps HandlerDeps
}

func (h listHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "list")
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	sendText(ctx, b, log, chatID, msgs.ListLoading)

	friends, err := h.deps.Friends.ListFriends(ctx)
	if err != nil || len(friends) == 0 {
		if err != nil {
			log.ErrorContext(ctx, "Failed to list friends", "error", err, "chat_id", chatID)
		}
		sendText(ctx, b, log, chatID, msgs.ListFailed)
		return
	}

	sent := sendMessage(ctx, b, log, &bot.SendMessageParams{
		ChatID:             chatID,
		Text:               formatFriendList(msgs.ListHeader, friends),
		ParseMode:          models.ParseModeMarkdown,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
	})
	if !sent {
		log.WarnContext(ctx, "Formatted friend list rejected, sending plain text", "chat_id", chatID)
		sendMessage(ctx, b, log, &bot.SendMessageParams{
			ChatID:             chatID,
			Text:               formatFriendListPlain(msgs.ListHeader, friends),
			LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
		})
	}
	log.InfoContext(ctx, "Sent friend list", "chat_id", chatID, "count", len(friends))
}
