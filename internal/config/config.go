// Package config provides configuration loading, validation, and management
// for the friendbook API and bot. It reads an optional YAML file, overlays
// FRIENDBOOK_* environment variables, and validates the result.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config defines the configuration of both friendbook processes.
// Sections that only one process needs are validated by ValidateAPI or
// ValidateBot.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Media     MediaConfig     `mapstructure:"media"`
	Server    ServerConfig    `mapstructure:"server"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig selects the relational backend of the record store.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"            validate:"oneof=sqlite postgres"`
	Path            string        `mapstructure:"path"              validate:"required_if=Driver sqlite"`
	Host            string        `mapstructure:"host"              validate:"required_if=Driver postgres"`
	Port            int           `mapstructure:"port"              validate:"omitempty,min=1,max=65535"`
	User            string        `mapstructure:"user"              validate:"required_if=Driver postgres"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"              validate:"required_if=Driver postgres"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the data source name for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver != "postgres" {
		return d.Path
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{d.SSLMode}}.Encode()
	}
	return u.String()
}

// MediaConfig locates uploaded photos on disk and on the public URL space.
type MediaConfig struct {
	Dir       string `mapstructure:"dir"        validate:"required"`
	URLPrefix string `mapstructure:"url_prefix" validate:"required,startswith=/"`
}

// ServerConfig configures the HTTP listener of the API process.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"min=1s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"min=1s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes" validate:"min=1024"`
	GinMode         string        `mapstructure:"gin_mode"         validate:"oneof=debug release test"`
}

// TelegramConfig holds the bot credentials.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
}

// BackendConfig tells the bot where the API lives.
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"min=1s,max=5m"`
}

// SessionConfig selects where in-progress conversations are kept.
type SessionConfig struct {
	Backend     string        `mapstructure:"backend"      validate:"oneof=memory redis"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"min=1m"`
}

// RedisConfig is used when Session.Backend is "redis".
type RedisConfig struct {
	Addr      string `mapstructure:"addr"       validate:"required"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"         validate:"min=0"`
	KeyPrefix string `mapstructure:"key_prefix" validate:"required"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a scheduled task with a cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig contains every user-facing bot text.
type MessagesConfig struct {
	Welcome            string `mapstructure:"welcome"              validate:"required"`
	GeneralError       string `mapstructure:"general_error"        validate:"required"`
	AddFriendStart     string `mapstructure:"add_friend_start"     validate:"required"`
	PhotoExpected      string `mapstructure:"photo_expected"       validate:"required"`
	PhotoReceived      string `mapstructure:"photo_received"       validate:"required"`
	TextExpected       string `mapstructure:"text_expected"        validate:"required"`
	NameReceived       string `mapstructure:"name_received"        validate:"required"`
	ProfessionReceived string `mapstructure:"profession_received"  validate:"required"`
	Submitting         string `mapstructure:"submitting"           validate:"required"`
	SkipSubmitting     string `mapstructure:"skip_submitting"      validate:"required"`
	SkipNotAllowed     string `mapstructure:"skip_not_allowed"     validate:"required"`
	CreatedFmt         string `mapstructure:"created_fmt"          validate:"required"`
	CreateFailed       string `mapstructure:"create_failed"        validate:"required"`
	Cancelled          string `mapstructure:"cancelled"            validate:"required"`
	NothingToCancel    string `mapstructure:"nothing_to_cancel"    validate:"required"`
	ListLoading        string `mapstructure:"list_loading"         validate:"required"`
	ListFailed         string `mapstructure:"list_failed"          validate:"required"`
	ListHeader         string `mapstructure:"list_header"          validate:"required"`
	FriendUsage        string `mapstructure:"friend_usage"         validate:"required"`
	FriendUnreachable  string `mapstructure:"friend_unreachable"   validate:"required"`
	FriendNotFoundFmt  string `mapstructure:"friend_not_found_fmt" validate:"required"`
	FriendNoPhoto      string `mapstructure:"friend_no_photo"      validate:"required"`
	FriendPhotoFailed  string `mapstructure:"friend_photo_failed"  validate:"required"`
}
