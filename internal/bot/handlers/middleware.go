// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// RequireSender drops updates that carry no message or no sender. Dialogue
// state is keyed by the sender, so such updates cannot be served.
func RequireSender(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				deps.Logger.With("middleware", "RequireSender").
					WarnContext(ctx, "Dropping update without message or sender", "update_id", update.ID)
				return
			}
			next(ctx, bot, update)
		}
	}
}
