package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewAddFriendHandler returns a handler for /addfriend, which (re)starts the dialogue.
func NewAddFriendHandler(deps HandlerDeps) bot.HandlerFunc {
	return addFriendHandler{deps}.Handle
}

type addFriendHandler struct {
	deps HandlerDeps
}

func (h addFriendHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "addfriend")
	msg := update.Message
	log.InfoContext(ctx, "Handling /addfriend command", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)

	sendReplies(ctx, b, log, msg.Chat.ID, h.deps.Wizard.Start(ctx, msg.From.ID))
}

// NewCancelHandler returns a handler for /cancel.
func NewCancelHandler(deps HandlerDeps) bot.HandlerFunc {
	return cancelHandler{deps}.Handle
}

type cancelHandler struct {
	deps HandlerDeps
}

func (h cancelHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "cancel")
	msg := update.Message

	sendReplies(ctx, b, log, msg.Chat.ID, h.deps.Wizard.Cancel(ctx, msg.From.ID))
}

// NewSkipHandler returns a handler for /skip, used on the description step.
func NewSkipHandler(deps HandlerDeps) bot.HandlerFunc {
	return skipHandler{deps}.Handle
}

type skipHandler struct {
	deps HandlerDeps
}

func (h skipHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "skip")
	msg := update.Message

	sendReplies(ctx, b, log, msg.Chat.ID, h.deps.Wizard.Skip(ctx, msg.From.ID))
}
