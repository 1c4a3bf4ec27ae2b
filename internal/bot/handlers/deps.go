package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/friendbook/internal/client"
	"github.com/edgard/friendbook/internal/config"
	"github.com/edgard/friendbook/internal/wizard"
)

// FriendsReader is the read side of the friends API used by /list and /friend.
type FriendsReader interface {
	ListFriends(ctx context.Context) ([]client.Friend, error)
	GetFriend(ctx context.Context, id int64) (*client.Friend, error)
	GetPhoto(ctx context.Context, photoURL string) ([]byte, error)
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Wizard  *wizard.Wizard
	Friends FriendsReader
}
