// Package wizard drives the /addfriend dialogue: photo, name, profession,
// optional description, then submission to the friends API.
//
// The wizard never talks to Telegram. Each operation returns the replies the
// caller should send, in order.
package wizard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edgard/friendbook/internal/client"
	"github.com/edgard/friendbook/internal/config"
	"github.com/edgard/friendbook/internal/logger"
	"github.com/edgard/friendbook/internal/session"
)

// FriendsAPI is the part of the API client the wizard submits to.
type FriendsAPI interface {
	CreateFriend(ctx context.Context, in client.NewFriend) (*client.Friend, error)
}

// Keyboard tells the caller what to do with the user's reply keyboard.
type Keyboard int

const (
	// KeyboardKeep leaves whatever keyboard the user has.
	KeyboardKeep Keyboard = iota
	// KeyboardSkip offers a one-time /skip button.
	KeyboardSkip
	// KeyboardRemove hides the reply keyboard.
	KeyboardRemove
)

// Reply is one message to send back to the user.
type Reply struct {
	Text     string
	Keyboard Keyboard
}

// Wizard is safe for concurrent use; per-user state lives in the session store.
type Wizard struct {
	sessions session.Store
	api      FriendsAPI
	msgs     config.MessagesConfig
	logger   *slog.Logger
}

// New returns a wizard storing dialogue state in sessions and submitting to api.
func New(sessions session.Store, api FriendsAPI, msgs config.MessagesConfig, log *slog.Logger) *Wizard {
	if log == nil {
		log = logger.Discard()
	}
	return &Wizard{
		sessions: sessions,
		api:      api,
		msgs:     msgs,
		logger:   log.With("component", "wizard"),
	}
}

// Start begins a new dialogue, discarding anything collected before.
func (w *Wizard) Start(ctx context.Context, userID int64) []Reply {
	s := &session.Session{UserID: userID, State: session.StateAwaitingPhoto}
	if err := w.sessions.Save(ctx, s); err != nil {
		return w.storeFailure(ctx, userID, "start", err)
	}
	w.logger.InfoContext(ctx, "Add-friend dialogue started", "user_id", userID)
	return []Reply{{Text: w.msgs.AddFriendStart, Keyboard: KeyboardRemove}}
}

// Active reports whether the user is in the middle of a dialogue.
func (w *Wizard) Active(ctx context.Context, userID int64) bool {
	s, err := w.sessions.Get(ctx, userID)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to load session", "user_id", userID, "error", err)
		return false
	}
	return s != nil
}

// AwaitingPhoto reports whether the user's dialogue is at the photo step.
func (w *Wizard) AwaitingPhoto(ctx context.Context, userID int64) bool {
	s, err := w.sessions.Get(ctx, userID)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to load session", "user_id", userID, "error", err)
		return false
	}
	return s != nil && s.State == session.StateAwaitingPhoto
}

// Photo handles a photo message. Outside the photo step it is treated like
// any other non-text message.
func (w *Wizard) Photo(ctx context.Context, userID int64, photo []byte) []Reply {
	s, replies, ok := w.load(ctx, userID, "photo")
	if !ok {
		return replies
	}
	if s.State != session.StateAwaitingPhoto {
		return w.reprompt(s)
	}

	s.Photo = photo
	s.State = session.StateAwaitingName
	if err := w.sessions.Save(ctx, s); err != nil {
		return w.storeFailure(ctx, userID, "photo", err)
	}
	return []Reply{{Text: w.msgs.PhotoReceived}}
}

// Text handles a plain text message.
func (w *Wizard) Text(ctx context.Context, userID int64, text string) []Reply {
	s, replies, ok := w.load(ctx, userID, "text")
	if !ok {
		return replies
	}

	var reply Reply
	switch s.State {
	case session.StateAwaitingPhoto:
		return []Reply{{Text: w.msgs.PhotoExpected}}
	case session.StateAwaitingName:
		s.Name = text
		s.State = session.StateAwaitingProfession
		reply = Reply{Text: w.msgs.NameReceived}
	case session.StateAwaitingProfession:
		s.Profession = text
		s.State = session.StateAwaitingDescription
		reply = Reply{Text: w.msgs.ProfessionReceived, Keyboard: KeyboardSkip}
	case session.StateAwaitingDescription:
		desc := text
		s.Description = &desc
		return append([]Reply{{Text: w.msgs.Submitting, Keyboard: KeyboardRemove}}, w.submit(ctx, s)...)
	default:
		w.logger.WarnContext(ctx, "Session in unknown state, dropping it", "user_id", userID, "state", s.State)
		return w.storeFailure(ctx, userID, "text", fmt.Errorf("unknown state %q", s.State))
	}

	if err := w.sessions.Save(ctx, s); err != nil {
		return w.storeFailure(ctx, userID, "text", err)
	}
	return []Reply{reply}
}

// Other handles messages that are neither text nor photo, such as stickers.
func (w *Wizard) Other(ctx context.Context, userID int64) []Reply {
	s, replies, ok := w.load(ctx, userID, "other")
	if !ok {
		return replies
	}
	return w.reprompt(s)
}

// Skip submits without a description when the dialogue is at that step.
func (w *Wizard) Skip(ctx context.Context, userID int64) []Reply {
	s, err := w.sessions.Get(ctx, userID)
	if err != nil {
		return w.storeFailure(ctx, userID, "skip", err)
	}
	if s == nil || s.State != session.StateAwaitingDescription {
		return []Reply{{Text: w.msgs.SkipNotAllowed}}
	}

	s.Description = nil
	return append([]Reply{{Text: w.msgs.SkipSubmitting, Keyboard: KeyboardRemove}}, w.submit(ctx, s)...)
}

// Cancel abandons the dialogue without contacting the API.
func (w *Wizard) Cancel(ctx context.Context, userID int64) []Reply {
	s, err := w.sessions.Get(ctx, userID)
	if err != nil {
		return w.storeFailure(ctx, userID, "cancel", err)
	}
	if s == nil {
		return []Reply{{Text: w.msgs.NothingToCancel, Keyboard: KeyboardRemove}}
	}
	if err := w.sessions.Delete(ctx, userID); err != nil {
		w.logger.ErrorContext(ctx, "Failed to delete cancelled session", "user_id", userID, "error", err)
	}
	w.logger.InfoContext(ctx, "Add-friend dialogue cancelled", "user_id", userID, "state", s.State)
	return []Reply{{Text: w.msgs.Cancelled, Keyboard: KeyboardRemove}}
}

// submit sends the collected record and always ends the dialogue.
func (w *Wizard) submit(ctx context.Context, s *session.Session) []Reply {
	defer func() {
		if err := w.sessions.Delete(ctx, s.UserID); err != nil {
			w.logger.ErrorContext(ctx, "Failed to delete finished session", "user_id", s.UserID, "error", err)
		}
	}()

	friend, err := w.api.CreateFriend(ctx, client.NewFriend{
		Name:        s.Name,
		Profession:  s.Profession,
		Description: s.Description,
		Photo:       s.Photo,
	})
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to create friend", "user_id", s.UserID, "error", err)
		return []Reply{{Text: w.msgs.CreateFailed, Keyboard: KeyboardRemove}}
	}

	w.logger.InfoContext(ctx, "Friend created from dialogue", "user_id", s.UserID, "friend_id", friend.ID)
	return []Reply{{
		Text:     fmt.Sprintf(w.msgs.CreatedFmt, friend.ID, friend.Name, friend.Profession),
		Keyboard: KeyboardRemove,
	}}
}

// load fetches the user's session. ok is false when there is nothing to
// continue, in which case replies is what to send (possibly nothing).
func (w *Wizard) load(ctx context.Context, userID int64, op string) (*session.Session, []Reply, bool) {
	s, err := w.sessions.Get(ctx, userID)
	if err != nil {
		return nil, w.storeFailure(ctx, userID, op, err), false
	}
	if s == nil {
		w.logger.DebugContext(ctx, "Message outside of a dialogue ignored", "user_id", userID, "op", op)
		return nil, nil, false
	}
	return s, nil, true
}

func (w *Wizard) reprompt(s *session.Session) []Reply {
	if s.State == session.StateAwaitingPhoto {
		return []Reply{{Text: w.msgs.PhotoExpected}}
	}
	return []Reply{{Text: w.msgs.TextExpected}}
}

// storeFailure drops the dialogue after the session store misbehaved.
func (w *Wizard) storeFailure(ctx context.Context, userID int64, op string, err error) []Reply {
	w.logger.ErrorContext(ctx, "Session store failure", "user_id", userID, "op", op, "error", err)
	if delErr := w.sessions.Delete(ctx, userID); delErr != nil {
		w.logger.WarnContext(ctx, "Failed to drop session after store failure", "user_id", userID, "error", delErr)
	}
	return []Reply{{Text: w.msgs.GeneralError, Keyboard: KeyboardRemove}}
}
