// Package client is the bot's HTTP client for the friends API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	apperrors "github.com/edgard/friendbook/internal/errors"
	"github.com/edgard/friendbook/internal/logger"
)

// PhotoFilename is the multipart filename used for uploaded photos.
const PhotoFilename = "friend_photo.jpg"

// ErrNotFound is returned by GetFriend when the API has no record with that id.
var ErrNotFound = apperrors.NewNotFoundError("friend not found")

// Friend mirrors the API's JSON record.
type Friend struct {
	ID                    int64   `json:"id"`
	Name                  string  `json:"name"`
	Profession            string  `json:"profession"`
	ProfessionDescription *string `json:"profession_description"`
	PhotoURL              *string `json:"photo_url"`
}

// NewFriend is the input of CreateFriend.
type NewFriend struct {
	Name        string
	Profession  string
	Description *string
	Photo       []byte
}

// Client calls the friends API. It is safe for concurrent use.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// New returns a client for the API at baseURL. Every request is bounded by
// timeout and is never retried.
func New(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   rc,
		logger: log.With("component", "api_client"),
	}
}

// CreateFriend posts a new record as multipart form data.
func (c *Client) CreateFriend(ctx context.Context, in NewFriend) (*Friend, error) {
	form := map[string]string{
		"name":       in.Name,
		"profession": in.Profession,
	}
	if in.Description != nil {
		form["profession_description"] = *in.Description
	}

	req := c.http.R().SetContext(ctx).SetFormData(form)
	if len(in.Photo) > 0 {
		req.SetMultipartField("photo", PhotoFilename, "image/jpeg", bytes.NewReader(in.Photo))
	}

	resp, err := req.Post("/friends/")
	if err := c.check(ctx, "create friend", resp, err, http.StatusCreated, http.StatusOK); err != nil {
		return nil, err
	}

	var friend Friend
	if err := c.decode(ctx, "create friend", resp, &friend); err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "Friend created", "friend_id", friend.ID)
	return &friend, nil
}

// ListFriends returns every record in the API's order.
func (c *Client) ListFriends(ctx context.Context) ([]Friend, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/friends/")
	if err := c.check(ctx, "list friends", resp, err, http.StatusOK); err != nil {
		return nil, err
	}

	friends := make([]Friend, 0)
	if err := c.decode(ctx, "list friends", resp, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

// GetFriend fetches one record. A 404 yields ErrNotFound.
func (c *Client) GetFriend(ctx context.Context, id int64) (*Friend, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/friends/" + strconv.FormatInt(id, 10))
	if err == nil && resp.StatusCode() == http.StatusNotFound {
		c.logger.DebugContext(ctx, "Friend not found", "friend_id", id)
		return nil, ErrNotFound
	}
	if err := c.check(ctx, "get friend", resp, err, http.StatusOK); err != nil {
		return nil, err
	}

	var friend Friend
	if err := c.decode(ctx, "get friend", resp, &friend); err != nil {
		return nil, err
	}
	return &friend, nil
}

// GetPhoto downloads the bytes behind a record's photo_url.
func (c *Client) GetPhoto(ctx context.Context, photoURL string) ([]byte, error) {
	if photoURL == "" {
		return nil, apperrors.NewTransportError("download photo: empty url", nil)
	}
	resp, err := c.http.R().SetContext(ctx).SetHeader("Accept", "*/*").Get(photoURL)
	if err := c.check(ctx, "download photo", resp, err, http.StatusOK); err != nil {
		return nil, err
	}
	body := resp.Body()
	if len(body) == 0 {
		c.logger.WarnContext(ctx, "Downloaded photo is empty", "url", photoURL)
		return nil, apperrors.NewTransportError("download photo: empty body", nil)
	}
	return body, nil
}

// check turns a transport failure or an unexpected status into a transport error.
func (c *Client) check(ctx context.Context, op string, resp *resty.Response, err error, want ...int) error {
	if err != nil {
		c.logger.ErrorContext(ctx, "API request failed", "op", op, "error", err)
		return apperrors.NewTransportError(op, err)
	}
	for _, code := range want {
		if resp.StatusCode() == code {
			return nil
		}
	}
	c.logger.ErrorContext(ctx, "API returned unexpected status",
		"op", op,
		"status", resp.StatusCode(),
		"body", truncate(resp.String(), 200))
	return apperrors.NewTransportError(op, fmt.Errorf("unexpected status %d", resp.StatusCode()))
}

func (c *Client) decode(ctx context.Context, op string, resp *resty.Response, v any) error {
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		c.logger.ErrorContext(ctx, "Failed to decode API response", "op", op, "error", err)
		return apperrors.NewTransportError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
