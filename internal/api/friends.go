package api

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/edgard/friendbook/internal/database"
	apperrors "github.com/edgard/friendbook/internal/errors"
	"github.com/edgard/friendbook/internal/media"
)

const healthTimeout = 2 * time.Second

type handler struct {
	logger   *slog.Logger
	store    database.Store
	photos   *media.Store
	maxBytes int64
	validate *validator.Validate
}

// createFriendRequest is the form accepted by POST /friends.
type createFriendRequest struct {
	Name                  string `validate:"required"`
	Profession            string `validate:"required"`
	ProfessionDescription *string
	Photo                 *multipart.FileHeader
}

func (h *handler) createFriend(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.bindCreateFriend(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	friend := &database.Friend{
		Name:                  req.Name,
		Profession:            req.Profession,
		ProfessionDescription: req.ProfessionDescription,
	}

	if req.Photo != nil {
		url, err := h.savePhoto(ctx, req.Photo)
		if err != nil {
			h.writeError(c, err)
			return
		}
		friend.PhotoURL = &url
	}

	if err := h.store.CreateFriend(ctx, friend); err != nil {
		if friend.PhotoURL != nil {
			if rmErr := h.photos.Remove(*friend.PhotoURL); rmErr != nil {
				h.logger.WarnContext(ctx, "Failed to remove photo of unsaved friend", "url", *friend.PhotoURL, "error", rmErr)
			}
		}
		h.writeError(c, err)
		return
	}

	h.logger.InfoContext(ctx, "Friend created", "friend_id", friend.ID, "has_photo", friend.PhotoURL != nil)
	c.JSON(http.StatusCreated, friend)
}

// bindCreateFriend reads the urlencoded or multipart body into a request
// and checks the required fields before anything is stored.
func (h *handler) bindCreateFriend(c *gin.Context) (*createFriendRequest, error) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}

	var parseErr error
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		parseErr = c.Request.ParseMultipartForm(h.maxMemory())
	} else {
		parseErr = c.Request.ParseForm()
	}
	if parseErr != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(parseErr, &tooLarge) {
			return nil, errRequestTooLarge
		}
		return nil, apperrors.NewValidationError("invalid form body", parseErr)
	}

	req := &createFriendRequest{
		Name:       c.PostForm("name"),
		Profession: c.PostForm("profession"),
	}
	if desc := c.PostForm("profession_description"); desc != "" {
		req.ProfessionDescription = &desc
	}
	if fh, err := c.FormFile("photo"); err == nil && fh.Filename != "" {
		req.Photo = fh
	}

	if err := h.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidationError(validationDetail(err), err)
	}
	return req, nil
}

func (h *handler) maxMemory() int64 {
	if h.maxBytes > 0 {
		return h.maxBytes
	}
	return 32 << 20
}

func (h *handler) savePhoto(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", apperrors.NewStorageError("failed to open uploaded photo", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			h.logger.WarnContext(ctx, "Failed to close uploaded photo", "error", closeErr)
		}
	}()

	return h.photos.Save(ctx, f, fh.Filename)
}

func (h *handler) getFriend(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.writeError(c, errFriendNotFound)
		return
	}

	friend, err := h.store.GetFriend(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if friend == nil {
		h.writeError(c, errFriendNotFound)
		return
	}

	c.JSON(http.StatusOK, friend)
}

func (h *handler) listFriends(c *gin.Context) {
	friends, err := h.store.ListFriends(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if friends == nil {
		friends = []database.Friend{}
	}
	c.JSON(http.StatusOK, friends)
}

func (h *handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

var (
	errFriendNotFound  = apperrors.NewNotFoundError("Friend not found")
	errRequestTooLarge = errors.New("request body too large")
)

// writeError maps an error kind to its status code. Only validation and
// not-found messages reach the client.
func (h *handler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	if errors.Is(err, errRequestTooLarge) {
		fail(c, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	var appErr *apperrors.Error
	switch apperrors.Code(err) {
	case apperrors.CodeValidation:
		detail := "invalid request"
		if errors.As(err, &appErr) {
			detail = appErr.Message()
		}
		fail(c, http.StatusUnprocessableEntity, detail)
	case apperrors.CodeNotFound:
		detail := "not found"
		if errors.As(err, &appErr) {
			detail = appErr.Message()
		}
		fail(c, http.StatusNotFound, detail)
	default:
		h.logger.ErrorContext(c.Request.Context(), "Request failed", "path", c.Request.URL.Path, "error", err)
		fail(c, http.StatusInternalServerError, internalErrorDetail)
	}
}

// validationDetail names the first missing field the way the form spells it.
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "field required: " + formFieldName(verrs[0].Field())
	}
	return "invalid request"
}

func formFieldName(structField string) string {
	switch structField {
	case "Name":
		return "name"
	case "Profession":
		return "profession"
	default:
		return structField
	}
}
