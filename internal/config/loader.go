package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	apperrors "github.com/edgard/friendbook/internal/errors"
)

// EnvPrefix is prepended to every configuration key looked up in the environment,
// e.g. FRIENDBOOK_DATABASE_DRIVER.
const EnvPrefix = "FRIENDBOOK"

// legacyEnv binds the variable names used by earlier deployments.
var legacyEnv = map[string][]string{
	"telegram.token":    {"BOT_TOKEN"},
	"backend.base_url":  {"BACKEND_BASE_URL"},
	"database.host":     {"DATABASE_HOSTNAME"},
	"database.port":     {"DATABASE_PORT"},
	"database.user":     {"DATABASE_USER"},
	"database.password": {"DATABASE_PASSWORD"},
	"database.name":     {"DATABASE_NAME"},
}

// Load loads configuration from:
// 1. Default values
// 2. the YAML file at path (optional, a missing file is not an error)
// 3. FRIENDBOOK_* and legacy environment variables
//
// Only the sections shared by both processes are validated here; callers
// finish with ValidateAPI or ValidateBot.
func Load(path string) (*Config, error) {
	startTime := time.Now()
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		input := append([]string{key, EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(input...); err != nil {
			return nil, apperrors.NewConfigError("failed to bind environment", err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
			}
			slog.Debug("configuration file loaded", "path", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to stat config file %s", path), err)
		} else {
			slog.Info("configuration file not found, using defaults and environment", "path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("configuration loaded",
		"database_driver", cfg.Database.Driver,
		"media_dir", cfg.Media.Dir,
		"session_backend", cfg.Session.Backend,
		"duration_ms", time.Since(startTime).Milliseconds())

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	v.SetDefault("database.driver", DefaultDBDriver)
	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", DefaultDBPort)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.sslmode", DefaultDBSSLMode)
	v.SetDefault("database.max_open_conns", DefaultDBMaxOpenConns)
	v.SetDefault("database.max_idle_conns", DefaultDBMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", DefaultDBConnMaxLifetime)

	v.SetDefault("media.dir", DefaultMediaDir)
	v.SetDefault("media.url_prefix", DefaultMediaURLPrefix)

	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	v.SetDefault("server.write_timeout", DefaultServerWriteTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultServerShutdownTimeout)
	v.SetDefault("server.max_upload_bytes", DefaultServerMaxUploadBytes)
	v.SetDefault("server.gin_mode", DefaultServerGinMode)

	v.SetDefault("telegram.token", "")

	v.SetDefault("backend.base_url", DefaultBackendBaseURL)
	v.SetDefault("backend.timeout", DefaultBackendTimeout)

	v.SetDefault("session.backend", DefaultSessionBackend)
	v.SetDefault("session.idle_timeout", DefaultSessionIdleTimeout)

	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", DefaultRedisKeyPrefix)

	tasks := make(map[string]any, len(DefaultSchedulerTasks))
	for name, task := range DefaultSchedulerTasks {
		tasks[name] = map[string]any{"enabled": task.Enabled, "schedule": task.Schedule}
	}
	v.SetDefault("scheduler.tasks", tasks)

	m := DefaultMessages
	v.SetDefault("messages.welcome", m.Welcome)
	v.SetDefault("messages.general_error", m.GeneralError)
	v.SetDefault("messages.add_friend_start", m.AddFriendStart)
	v.SetDefault("messages.photo_expected", m.PhotoExpected)
	v.SetDefault("messages.photo_received", m.PhotoReceived)
	v.SetDefault("messages.text_expected", m.TextExpected)
	v.SetDefault("messages.name_received", m.NameReceived)
	v.SetDefault("messages.profession_received", m.ProfessionReceived)
	v.SetDefault("messages.submitting", m.Submitting)
	v.SetDefault("messages.skip_submitting", m.SkipSubmitting)
	v.SetDefault("messages.skip_not_allowed", m.SkipNotAllowed)
	v.SetDefault("messages.created_fmt", m.CreatedFmt)
	v.SetDefault("messages.create_failed", m.CreateFailed)
	v.SetDefault("messages.cancelled", m.Cancelled)
	v.SetDefault("messages.nothing_to_cancel", m.NothingToCancel)
	v.SetDefault("messages.list_loading", m.ListLoading)
	v.SetDefault("messages.list_failed", m.ListFailed)
	v.SetDefault("messages.list_header", m.ListHeader)
	v.SetDefault("messages.friend_usage", m.FriendUsage)
	v.SetDefault("messages.friend_unreachable", m.FriendUnreachable)
	v.SetDefault("messages.friend_not_found_fmt", m.FriendNotFoundFmt)
	v.SetDefault("messages.friend_no_photo", m.FriendNoPhoto)
	v.SetDefault("messages.friend_photo_failed", m.FriendPhotoFailed)
}

// Validate checks the sections used by both processes.
func (c *Config) Validate() error {
	validate := validator.New()
	for name, section := range map[string]any{
		"log":      &c.Log,
		"messages": &c.Messages,
	} {
		if err := validate.Struct(section); err != nil {
			return apperrors.NewConfigError("invalid "+name+" configuration", err)
		}
	}
	for name, task := range c.Scheduler.Tasks {
		if task.Enabled && strings.TrimSpace(task.Schedule) == "" {
			return apperrors.NewConfigError("invalid scheduler configuration",
				fmt.Errorf("task %q is enabled but has no schedule", name))
		}
	}
	return nil
}

// ValidateAPI checks the sections the API process depends on.
func (c *Config) ValidateAPI() error {
	validate := validator.New()
	for name, section := range map[string]any{
		"database": &c.Database,
		"media":    &c.Media,
		"server":   &c.Server,
	} {
		if err := validate.Struct(section); err != nil {
			return apperrors.NewConfigError("invalid "+name+" configuration", err)
		}
	}
	return nil
}

// ValidateBot checks the sections the bot process depends on.
func (c *Config) ValidateBot() error {
	validate := validator.New()
	sections := map[string]any{
		"telegram": &c.Telegram,
		"backend":  &c.Backend,
		"session":  &c.Session,
	}
	if c.Session.Backend == "redis" {
		sections["redis"] = &c.Redis
	}
	for name, section := range sections {
		if err := validate.Struct(section); err != nil {
			return apperrors.NewConfigError("invalid "+name+" configuration", err)
		}
	}
	return nil
}

// TaskEnabled reports whether the named scheduled task is configured to run.
func (c *Config) TaskEnabled(name string) bool {
	task, ok := c.Scheduler.Tasks[name]
	return ok && task.Enabled && task.Schedule != ""
}
