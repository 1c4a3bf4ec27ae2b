package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/edgard/friendbook/internal/config"
	"github.com/edgard/friendbook/internal/database"
	"github.com/edgard/friendbook/internal/logger"
	"github.com/edgard/friendbook/internal/media"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router   *gin.Engine
	store    database.Store
	mediaDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := database.NewDB(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "api.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	store := database.NewStore(db, logger.Discard())
	mediaDir := filepath.Join(dir, "uploads", "avatars")
	return newTestEnvWithStore(t, store, mediaDir)
}

func newTestEnvWithStore(t *testing.T, store database.Store, mediaDir string) *testEnv {
	t.Helper()
	router := NewRouter(Deps{
		Logger:         logger.Discard(),
		Store:          store,
		Photos:         media.New(mediaDir, "/media", logger.Discard()),
		MaxUploadBytes: 1 << 20,
	})
	return &testEnv{router: router, store: store, mediaDir: mediaDir}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, path string, fields map[string]string, photo []byte, photoName string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if photo != nil {
		part, err := w.CreateFormFile("photo", photoName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(photo); err != nil {
			t.Fatalf("write photo: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeFriend(t *testing.T, rec *httptest.ResponseRecorder) database.Friend {
	t.Helper()
	var f database.Friend
	if err := json.Unmarshal(rec.Body.Bytes(), &f); err != nil {
		t.Fatalf("decode friend %q: %v", rec.Body.String(), err)
	}
	return f
}

func TestCreateFriend_WithPhoto(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	photo := []byte("\xff\xd8\xff fake jpeg")

	rec := env.do(multipartRequest(t, "/friends/", map[string]string{
		"name":                   "Alice",
		"profession":             "Data Scientist",
		"profession_description": "Works on ML pipelines",
	}, photo, "alice.JPG"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	f := decodeFriend(t, rec)
	if f.ID == 0 || f.Name != "Alice" || f.Profession != "Data Scientist" {
		t.Fatalf("unexpected friend: %+v", f)
	}
	if f.ProfessionDescription == nil || *f.ProfessionDescription != "Works on ML pipelines" {
		t.Fatalf("unexpected description: %v", f.ProfessionDescription)
	}
	if f.PhotoURL == nil || !strings.HasPrefix(*f.PhotoURL, "/media/") || !strings.HasSuffix(*f.PhotoURL, ".jpg") {
		t.Fatalf("unexpected photo url: %v", f.PhotoURL)
	}

	saved, err := os.ReadFile(filepath.Join(env.mediaDir, strings.TrimPrefix(*f.PhotoURL, "/media/")))
	if err != nil {
		t.Fatalf("photo not on disk: %v", err)
	}
	if !bytes.Equal(saved, photo) {
		t.Fatalf("photo bytes differ")
	}

	static := env.do(httptest.NewRequest(http.MethodGet, *f.PhotoURL, nil))
	if static.Code != http.StatusOK || !bytes.Equal(static.Body.Bytes(), photo) {
		t.Fatalf("static photo: status %d", static.Code)
	}
}

func TestCreateFriend_URLEncodedWithoutPhoto(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	form := url.Values{"name": {"Bob"}, "profession": {"Builder"}, "profession_description": {""}}
	req := httptest.NewRequest(http.MethodPost, "/friends", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := env.do(req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"photo_url":null`) ||
		!strings.Contains(rec.Body.String(), `"profession_description":null`) {
		t.Fatalf("expected explicit nulls, got %s", rec.Body.String())
	}
}

func TestCreateFriend_MissingFields(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		fields     map[string]string
		photo      bool
		urlencoded bool
		field      string
	}{
		{"no name", map[string]string{"profession": "Engineer"}, true, false, "name"},
		{"no profession", map[string]string{"name": "Carol"}, true, false, "profession"},
		{"empty name", map[string]string{"name": "", "profession": "Engineer"}, true, false, "name"},
		{"empty profession", map[string]string{"name": "Carol", "profession": ""}, true, false, "profession"},
		{"no name without photo", map[string]string{"profession": "Engineer"}, false, false, "name"},
		{"urlencoded no name", map[string]string{"profession": "Engineer"}, false, true, "name"},
		{"urlencoded empty profession", map[string]string{"name": "Carol", "profession": ""}, false, true, "profession"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)

			var req *http.Request
			switch {
			case tt.urlencoded:
				form := url.Values{}
				for k, v := range tt.fields {
					form.Set(k, v)
				}
				req = httptest.NewRequest(http.MethodPost, "/friends/", strings.NewReader(form.Encode()))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			case tt.photo:
				req = multipartRequest(t, "/friends/", tt.fields, []byte("img"), "a.png")
			default:
				req = multipartRequest(t, "/friends/", tt.fields, nil, "")
			}

			rec := env.do(req)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Detail != "field required: "+tt.field {
				t.Fatalf("detail %q does not name %q", body.Detail, tt.field)
			}

			friends, err := env.store.ListFriends(context.Background())
			if err != nil || len(friends) != 0 {
				t.Fatalf("expected nothing persisted, got %v, %v", friends, err)
			}
			if entries, _ := os.ReadDir(env.mediaDir); len(entries) != 0 {
				t.Fatalf("expected no photo written, found %d files", len(entries))
			}
		})
	}
}

func TestCreateFriend_EmptyPhotoFilenameIgnored(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(multipartRequest(t, "/friends/", map[string]string{
		"name": "Gus", "profession": "Gardener",
	}, []byte("img"), ""))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if f := decodeFriend(t, rec); f.PhotoURL != nil {
		t.Fatalf("expected no photo url, got %q", *f.PhotoURL)
	}
	if entries, _ := os.ReadDir(env.mediaDir); len(entries) != 0 {
		t.Fatalf("expected no photo written, found %d files", len(entries))
	}
}

type failingStore struct {
	database.Store
}

func (failingStore) CreateFriend(context.Context, *database.Friend) error {
	return errors.New("database is locked")
}

func TestCreateFriend_InsertFailureRemovesPhoto(t *testing.T) {
	t.Parallel()
	mediaDir := t.TempDir()
	env := newTestEnvWithStore(t, failingStore{}, mediaDir)

	rec := env.do(multipartRequest(t, "/friends/", map[string]string{
		"name": "Dave", "profession": "Pilot",
	}, []byte("img"), "d.jpg"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "locked") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
	entries, err := os.ReadDir(mediaDir)
	if err != nil {
		t.Fatalf("read media dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected orphan photo to be removed, found %d files", len(entries))
	}
}

type readFailingStore struct {
	database.Store
}

func (readFailingStore) GetFriend(context.Context, int64) (*database.Friend, error) {
	return nil, errors.New("connection reset by peer")
}

func (readFailingStore) ListFriends(context.Context) ([]database.Friend, error) {
	return nil, errors.New("connection reset by peer")
}

func TestReadFailuresAreInternalErrors(t *testing.T) {
	t.Parallel()
	env := newTestEnvWithStore(t, readFailingStore{}, t.TempDir())

	for _, path := range []string{"/friends/1", "/friends", "/friends/"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("GET %s: expected 500, got %d", path, rec.Code)
		}
		var body errorBody
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("GET %s: decode error body: %v", path, err)
		}
		if body.Detail != internalErrorDetail {
			t.Fatalf("GET %s: unexpected detail %q", path, body.Detail)
		}
	}
}

func TestGetFriend(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	created := &database.Friend{Name: "Erin", Profession: "Chef"}
	if err := env.store.CreateFriend(context.Background(), created); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"existing", "/friends/" + jsonNumber(created.ID), http.StatusOK},
		{"missing", "/friends/9999", http.StatusNotFound},
		{"not an integer", "/friends/abc", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status == http.StatusOK {
				f := decodeFriend(t, rec)
				if f.ID != created.ID || f.Name != "Erin" {
					t.Fatalf("unexpected friend %+v", f)
				}
			} else if !strings.Contains(rec.Body.String(), `"detail"`) {
				t.Fatalf("expected detail body, got %s", rec.Body.String())
			}
		})
	}
}

func TestListFriends(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/friends/", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %d %s", rec.Code, rec.Body.String())
	}

	for _, name := range []string{"A", "B"} {
		if err := env.store.CreateFriend(context.Background(), &database.Friend{Name: name, Profession: "P"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/friends", nil))
	var friends []database.Friend
	if err := json.Unmarshal(rec.Body.Bytes(), &friends); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(friends) != 2 || friends[0].Name != "A" || friends[1].Name != "B" {
		t.Fatalf("unexpected list %+v", friends)
	}
}

func TestRouting(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	if rec := env.do(httptest.NewRequest(http.MethodGet, "/nope", nil)); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route: expected 404, got %d", rec.Code)
	}
	if rec := env.do(httptest.NewRequest(http.MethodDelete, "/friends", nil)); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method: expected 405, got %d", rec.Code)
	}
	if rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil)); rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/friends", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := env.do(req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected CORS header, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
