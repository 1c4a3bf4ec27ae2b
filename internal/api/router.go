// Package api exposes friend records over HTTP with gin.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/edgard/friendbook/internal/database"
	"github.com/edgard/friendbook/internal/logger"
	"github.com/edgard/friendbook/internal/media"
)

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Logger         *slog.Logger
	Store          database.Store
	Photos         *media.Store
	MaxUploadBytes int64
}

// NewRouter builds the gin engine serving the friends API and the uploaded photos.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	log := deps.Logger.With("component", "api")

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.RedirectTrailingSlash = false
	if deps.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = deps.MaxUploadBytes
	}

	r.Use(logger.GinMiddleware(log))
	r.Use(Recovery(log))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"*"},
	}))

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Not Found")
	})
	r.NoMethod(func(c *gin.Context) {
		fail(c, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	h := &handler{
		logger:   log,
		store:    deps.Store,
		photos:   deps.Photos,
		maxBytes: deps.MaxUploadBytes,
		validate: validator.New(),
	}

	r.GET("/healthz", h.health)

	// The bot historically calls the collection with a trailing slash.
	r.POST("/friends", h.createFriend)
	r.POST("/friends/", h.createFriend)
	r.GET("/friends", h.listFriends)
	r.GET("/friends/", h.listFriends)
	r.GET("/friends/:id", h.getFriend)

	r.Static(deps.Photos.Prefix(), deps.Photos.Dir())

	return r
}

// Recovery turns a handler panic into a 500 with the standard error body.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "Recovered from panic in HTTP handler",
			"path", c.Request.URL.Path, "panic", recovered)
		fail(c, http.StatusInternalServerError, internalErrorDetail)
	})
}

const internalErrorDetail = "internal server error"

type errorBody struct {
	Detail string `json:"detail"`
}

func fail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, errorBody{Detail: detail})
}
