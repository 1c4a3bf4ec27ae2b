package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	photoDownloadTimeout       = 30 * time.Second
	maxPhotoBytes        int64 = 10 * 1024 * 1024
)

// NewMessageHandler returns the default handler. It feeds photos and plain
// text into an active add-friend dialogue and ignores everything else.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	h := messageHandler{deps: deps, httpClient: http.DefaultClient, maxPhotoBytes: maxPhotoBytes}
	return RequireSender(deps)(h.Handle)
}

type messageHandler struct {
	deps          HandlerDeps
	httpClient    *http.Client
	maxPhotoBytes int64
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")
	msg := update.Message
	userID, chatID := msg.From.ID, msg.Chat.ID

	if !h.deps.Wizard.Active(ctx, userID) {
		log.DebugContext(ctx, "No dialogue in progress, ignoring message", "user_id", userID, "chat_id", chatID)
		return
	}

	switch {
	case len(msg.Photo) > 0 && !h.deps.Wizard.AwaitingPhoto(ctx, userID):
		sendReplies(ctx, b, log, chatID, h.deps.Wizard.Other(ctx, userID))

	case len(msg.Photo) > 0:
		// Telegram lists sizes from smallest to largest.
		largest := msg.Photo[len(msg.Photo)-1]
		data, err := h.downloadFile(ctx, b, largest.FileID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to download photo from Telegram", "error", err, "user_id", userID)
			sendText(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
			return
		}
		sendReplies(ctx, b, log, chatID, h.deps.Wizard.Photo(ctx, userID, data))

	case msg.Text != "" && strings.HasPrefix(msg.Text, "/"):
		log.DebugContext(ctx, "Ignoring unknown command during dialogue", "user_id", userID, "text", msg.Text)

	case msg.Text != "":
		sendReplies(ctx, b, log, chatID, h.deps.Wizard.Text(ctx, userID, msg.Text))

	default:
		sendReplies(ctx, b, log, chatID, h.deps.Wizard.Other(ctx, userID))
	}
}

// downloadFile resolves a Telegram file id and fetches its content.
func (h messageHandler) downloadFile(ctx context.Context, b *bot.Bot, fileID string) (data []byte, err error) {
	if fileID == "" {
		return nil, fmt.Errorf("empty fileID provided")
	}
	downloadCtx, cancel := context.WithTimeout(ctx, photoDownloadTimeout)
	defer cancel()

	fileObj, err := b.GetFile(downloadCtx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	if fileObj.FilePath == "" {
		return nil, fmt.Errorf("empty file path returned from Telegram")
	}

	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, b.FileDownloadLink(fileObj), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, h.maxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}
	if int64(len(data)) > h.maxPhotoBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", h.maxPhotoBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("received empty file data")
	}
	return data, nil
}
