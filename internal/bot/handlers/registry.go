package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its pattern and middleware.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all available bot commands.
// Photo and plain text messages are not commands; they reach NewMessageHandler
// as the bot's default handler.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	senderOnly := []tgbot.Middleware{RequireSender(deps)}

	command := func(pattern string, h tgbot.HandlerFunc) RegisteredHandler {
		return RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Handler:     h,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Middleware:  senderOnly,
		}
	}

	handlers := make(map[string]RegisteredHandler)
	handlers["/start"] = command("start", NewStartHandler(deps))
	handlers["/help"] = command("help", NewHelpHandler(deps))
	handlers["/addfriend"] = command("addfriend", NewAddFriendHandler(deps))
	handlers["/list"] = command("list", NewListHandler(deps))
	handlers["/friend"] = command("friend", NewFriendHandler(deps))
	handlers["/cancel"] = command("cancel", NewCancelHandler(deps))
	handlers["/skip"] = command("skip", NewSkipHandler(deps))

	return handlers
}
