// Package session keeps the per-user state of in-progress /addfriend dialogues.
package session

import (
	"context"
	"time"
)

// State is a step of the add-friend dialogue.
type State string

// Dialogue steps in the order they are visited.
const (
	StateAwaitingPhoto       State = "AWAITING_PHOTO"
	StateAwaitingName        State = "AWAITING_NAME"
	StateAwaitingProfession  State = "AWAITING_PROFESSION"
	StateAwaitingDescription State = "AWAITING_DESCRIPTION"
)

// Session is the data collected so far for one user.
type Session struct {
	UserID      int64     `json:"user_id"`
	State       State     `json:"state"`
	Photo       []byte    `json:"photo,omitempty"`
	Name        string    `json:"name,omitempty"`
	Profession  string    `json:"profession,omitempty"`
	Description *string   `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store persists sessions keyed by Telegram user id.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the user's session, or nil, nil when there is none or it expired.
	Get(ctx context.Context, userID int64) (*Session, error)
	// Save creates or replaces the user's session and refreshes its idle timer.
	Save(ctx context.Context, s *Session) error
	// Delete removes the user's session. Deleting a missing session is not an error.
	Delete(ctx context.Context, userID int64) error
}
