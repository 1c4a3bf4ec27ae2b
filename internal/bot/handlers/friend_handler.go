package handlers

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/friendbook/internal/client"
)

// NewFriendHandler returns a handler for /friend <id>.
func NewFriendHandler(deps HandlerDeps) bot.HandlerFunc {
	return friendHandler{deps}.Handle
}

type friendHandler struct {
	deps HandlerDeps
}

func (h friendHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "friend")
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	id, ok := parseFriendID(update.Message.Text)
	if !ok {
		sendText(ctx, b, log, chatID, msgs.FriendUsage)
		return
	}

	friend, err := h.deps.Friends.GetFriend(ctx, id)
	switch {
	case client.IsNotFound(err):
		sendText(ctx, b, log, chatID, fmt.Sprintf(msgs.FriendNotFoundFmt, id))
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to fetch friend", "error", err, "friend_id", id)
		sendText(ctx, b, log, chatID, msgs.FriendUnreachable)
		return
	}

	caption := friendCaption(friend)

	var photo []byte
	if friend.PhotoURL != nil && *friend.PhotoURL != "" {
		photo, err = h.deps.Friends.GetPhoto(ctx, *friend.PhotoURL)
		if err != nil {
			log.WarnContext(ctx, "Failed to download friend photo", "error", err, "friend_id", id)
		}
	}

	if len(photo) == 0 {
		sent := sendMessage(ctx, b, log, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      escapeMarkdownV2(msgs.FriendNoPhoto) + caption,
			ParseMode: models.ParseModeMarkdown,
		})
		if !sent {
			sendText(ctx, b, log, chatID, msgs.FriendPhotoFailed+friendPlain(friend))
		}
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()
	_, err = b.SendPhoto(sendCtx, &bot.SendPhotoParams{
		ChatID:    chatID,
		Photo:     &models.InputFileUpload{Filename: client.PhotoFilename, Data: bytes.NewReader(photo)},
		Caption:   caption,
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send photo to Telegram", "error", err, "friend_id", id)
		sendText(ctx, b, log, chatID, msgs.FriendPhotoFailed+friendPlain(friend))
		return
	}
	log.InfoContext(ctx, "Sent friend card", "chat_id", chatID, "friend_id", id)
}
