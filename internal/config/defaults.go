package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultDBDriver          = "sqlite"
	DefaultDBPath            = "friendbook.db"
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "disable"
	DefaultDBMaxOpenConns    = 10
	DefaultDBMaxIdleConns    = 5
	DefaultDBConnMaxLifetime = time.Hour

	DefaultMediaDir       = "uploads/avatars"
	DefaultMediaURLPrefix = "/media"

	DefaultServerAddr            = ":8000"
	DefaultServerReadTimeout     = 30 * time.Second
	DefaultServerWriteTimeout    = 30 * time.Second
	DefaultServerShutdownTimeout = 10 * time.Second
	DefaultServerMaxUploadBytes  = 20 << 20 // Telegram photos are far below this
	DefaultServerGinMode         = "release"

	DefaultBackendBaseURL = "http://127.0.0.1:8000"
	DefaultBackendTimeout = 10 * time.Second

	DefaultSessionBackend     = "memory"
	DefaultSessionIdleTimeout = 30 * time.Minute

	DefaultRedisAddr      = "127.0.0.1:6379"
	DefaultRedisKeyPrefix = "friendbook:session:"
)

// Scheduled task names.
const (
	TaskSQLMaintenance = "sql_maintenance"
	TaskSessionSweep   = "session_sweep"
)

// DefaultSchedulerTasks enables the maintenance jobs of both processes.
var DefaultSchedulerTasks = map[string]TaskConfig{
	TaskSQLMaintenance: {Enabled: true, Schedule: "0 30 3 * * *"},
	TaskSessionSweep:   {Enabled: true, Schedule: "0 */5 * * * *"},
}

// DefaultMessages are the bot texts used when config.yaml does not override them.
var DefaultMessages = MessagesConfig{
	Welcome: "Hi! I'm your bot for managing your friend list.\n\n" +
		"Available commands:\n" +
		"/addfriend - add a new friend\n" +
		"/list - show all friends\n" +
		"/friend <id> - show a friend by ID",
	GeneralError:       "An error occurred. Please try again later.",
	AddFriendStart:     "Let's start creating a friend. Please send me their photo.\n\nSend /cancel to stop at any time.",
	PhotoExpected:      "This is not a photo. Please send a photo.",
	PhotoReceived:      "Great photo! Now, enter the friend's name:",
	TextExpected:       "Please answer with a text message.",
	NameReceived:       "Got it. Now, enter their profession:",
	ProfessionReceived: "Almost done. Add a short description of their profession.\n(Or press /skip to skip this step)",
	Submitting:         "Thank you! Creating your friend on the server...",
	SkipSubmitting:     "Okay, skipping description. Creating friend...",
	SkipNotAllowed:     "There is nothing to skip right now.",
	CreatedFmt:         "🎉 Successfully created friend!\n\nID: %d\nName: %s\nProfession: %s",
	CreateFailed:       "Error! Failed to create friend. Check the backend or console logs.",
	Cancelled:          "Friend creation canceled.",
	NothingToCancel:    "There is nothing to cancel.",
	ListLoading:        "Getting friend list from the backend...",
	ListFailed:         "Failed to get friend list, or it is empty.",
	ListHeader:         "Here are your friends:\n",
	FriendUsage:        "Please specify an ID. For example: /friend 123",
	FriendUnreachable:  "Error: could not contact the server.",
	FriendNotFoundFmt:  "Friend with ID %d not found.",
	FriendNoPhoto:      "Here is the data (photo not found):\n",
	FriendPhotoFailed:  "Failed to send photo, but here is the data:\n",
}
