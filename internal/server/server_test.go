package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/server"
)

const testSecret = "test-secret-at-least-16-chars!!"

type blogJSON struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
	User   *struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Name     string `json:"name"`
	} `json:"user"`
}

type userJSON struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Blogs    []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"blogs"`
}

type errorJSON struct {
	Error string `json:"error"`
}

// api drives the real router against an in-memory database.
type api struct {
	t *testing.T
	h http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := server.New(server.Config{
		DBPath:     ":memory:",
		JWTSecret:  testSecret,
		BcryptCost: 4,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return &api{t: t, h: srv.Handler()}
}

func (a *api) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(a.t, err)
		r = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func (a *api) register(username, name, password string) userJSON {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/api/users", map[string]string{
		"username": username, "name": name, "password": password,
	}, "")
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[userJSON](a.t, rr)
}

func (a *api) login(username, password string) string {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/api/login", map[string]string{
		"username": username, "password": password,
	}, "")
	require.Equal(a.t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[map[string]string](a.t, rr)["token"]
}

func (a *api) createBlog(token string, body any) blogJSON {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/api/blogs", body, token)
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[blogJSON](a.t, rr)
}

func (a *api) blogs() []blogJSON {
	a.t.Helper()
	rr := a.do(http.MethodGet, "/api/blogs", nil, "")
	require.Equal(a.t, http.StatusOK, rr.Code)
	return decode[[]blogJSON](a.t, rr)
}

func (a *api) registeredUser(username string) string {
	a.t.Helper()
	a.register(username, "Name of "+username, "strongpass")
	return a.login(username, "strongpass")
}

// =========================================================================
// END TO END
// =========================================================================

func TestEndToEnd_RegisterLoginCreateDelete(t *testing.T) {
	a := newAPI(t)

	user := a.register("alexandre", "Alexandre Matiello", "strongpass")
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alexandre", user.Username)
	assert.NotNil(t, user.Blogs)
	assert.Empty(t, user.Blogs)

	token := a.login("alexandre", "strongpass")
	require.NotEmpty(t, token)

	blog := a.createBlog(token, map[string]any{
		"title":  "Canonical string reduction",
		"author": "Edsger W. Dijkstra",
		"url":    "http://www.cs.utexas.edu/~EWD/transcriptions/EWD08xx/EWD808.html",
		"likes":  12,
	})
	require.NotNil(t, blog.User)
	assert.Equal(t, "alexandre", blog.User.Username)
	assert.Equal(t, user.ID, blog.User.ID)
	assert.Len(t, a.blogs(), 1)

	rr := a.do(http.MethodDelete, "/api/blogs/"+blog.ID, nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	for _, b := range a.blogs() {
		assert.NotEqual(t, blog.ID, b.ID)
	}
}

// =========================================================================
// BLOGS
// =========================================================================

func TestCreateBlog_LikesDefaultToZero(t *testing.T) {
	a := newAPI(t)
	token := a.registeredUser("root")

	blog := a.createBlog(token, map[string]any{"title": "no likes", "url": "https://example.com"})
	assert.Equal(t, 0, blog.Likes)

	rr := a.do(http.MethodGet, "/api/blogs/"+blog.ID, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[blogJSON](t, rr).Likes)
}

func TestCreateBlog_MissingFields(t *testing.T) {
	a := newAPI(t)
	token := a.registeredUser("root")
	a.createBlog(token, map[string]any{"title": "existing", "url": "https://example.com"})

	bodies := map[string]any{
		"missing title": map[string]any{"author": "x", "url": "https://example.com"},
		"missing url":   map[string]any{"title": "t", "author": "x"},
		"blank title":   map[string]any{"title": "   ", "url": "https://example.com"},
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rr := a.do(http.MethodPost, "/api/blogs", body, token)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Len(t, a.blogs(), 1)
		})
	}
}

func TestCreateBlog_AuthFailures(t *testing.T) {
	a := newAPI(t)
	body := map[string]any{"title": "t", "url": "u"}

	rr := a.do(http.MethodPost, "/api/blogs", body, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "token missing", decode[errorJSON](t, rr).Error)

	rr = a.do(http.MethodPost, "/api/blogs", body, "not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "token invalid", decode[errorJSON](t, rr).Error)

	// Correctly signed, but names a user this store has never seen.
	ts, err := auth.NewTokenService(testSecret)
	require.NoError(t, err)
	ghost, err := ts.Generate("ghost", "cv37rs3pp9olc6atsptg")
	require.NoError(t, err)

	rr = a.do(http.MethodPost, "/api/blogs", body, ghost)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "user not found", decode[errorJSON](t, rr).Error)

	assert.Empty(t, a.blogs())
}

func TestCreateBlog_MalformedJSON(t *testing.T) {
	a := newAPI(t)
	token := a.registeredUser("root")

	rr := a.do(http.MethodPost, "/api/blogs", `{"title": "unterminated`, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "malformed JSON body", decode[errorJSON](t, rr).Error)
}

func TestDeleteBlog(t *testing.T) {
	a := newAPI(t)
	owner := a.registeredUser("owner")
	other := a.registeredUser("other")
	blog := a.createBlog(owner, map[string]any{"title": "mine", "url": "https://example.com"})

	t.Run("malformed id", func(t *testing.T) {
		rr := a.do(http.MethodDelete, "/api/blogs/12345", nil, owner)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Len(t, a.blogs(), 1)
	})

	t.Run("unknown id", func(t *testing.T) {
		rr := a.do(http.MethodDelete, "/api/blogs/cv37rs3pp9olc6atsptg", nil, owner)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("without token", func(t *testing.T) {
		rr := a.do(http.MethodDelete, "/api/blogs/"+blog.ID, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Len(t, a.blogs(), 1)
	})

	t.Run("non-owner", func(t *testing.T) {
		rr := a.do(http.MethodDelete, "/api/blogs/"+blog.ID, nil, other)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Len(t, a.blogs(), 1)
	})

	t.Run("owner", func(t *testing.T) {
		rr := a.do(http.MethodDelete, "/api/blogs/"+blog.ID, nil, owner)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, a.blogs())
	})
}

func TestUpdateLikes(t *testing.T) {
	a := newAPI(t)
	token := a.registeredUser("root")
	blog := a.createBlog(token, map[string]any{"title": "t", "url": "https://example.com", "likes": 1})

	rr := a.do(http.MethodPut, "/api/blogs/"+blog.ID, map[string]any{"likes": 7}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[blogJSON](t, rr)
	assert.Equal(t, 7, updated.Likes)
	assert.Equal(t, "t", updated.Title)

	rr = a.do(http.MethodPut, "/api/blogs/"+blog.ID, map[string]any{"likes": -1}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = a.do(http.MethodPut, "/api/blogs/"+blog.ID, map[string]any{}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = a.do(http.MethodPut, "/api/blogs/bad-id", map[string]any{"likes": 1}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = a.do(http.MethodPut, "/api/blogs/cv37rs3pp9olc6atsptg", map[string]any{"likes": 1}, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBlogStats(t *testing.T) {
	a := newAPI(t)

	rr := a.do(http.MethodGet, "/api/blogs/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"totalLikes":0,"favoriteBlog":null,"mostBlogs":null,"mostLikes":null}`, rr.Body.String())

	token := a.registeredUser("root")
	a.createBlog(token, map[string]any{"title": "a", "author": "Dijkstra", "url": "u", "likes": 5})
	a.createBlog(token, map[string]any{"title": "b", "author": "Martin", "url": "u", "likes": 10})
	a.createBlog(token, map[string]any{"title": "c", "author": "Dijkstra", "url": "u", "likes": 1})

	rr = a.do(http.MethodGet, "/api/blogs/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"totalLikes": 16,
		"favoriteBlog": {"title": "b", "author": "Martin", "likes": 10},
		"mostBlogs": {"author": "Dijkstra", "blogs": 2},
		"mostLikes": {"author": "Martin", "likes": 10}
	}`, rr.Body.String())
}

// =========================================================================
// USERS AND LOGIN
// =========================================================================

func TestRegister_DuplicateUsername(t *testing.T) {
	a := newAPI(t)
	a.register("root", "Superuser", "salainen")

	rr := a.do(http.MethodPost, "/api/users", map[string]string{
		"username": "root", "name": "Again", "password": "salainen",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[errorJSON](t, rr).Error, "unique")
}

func TestRegister_TooShort(t *testing.T) {
	a := newAPI(t)

	for _, body := range []map[string]string{
		{"username": "ro", "password": "salainen"},
		{"username": "root", "password": "sa"},
	} {
		rr := a.do(http.MethodPost, "/api/users", body, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decode[errorJSON](t, rr).Error, "at least 3 characters")
	}

	rr := a.do(http.MethodGet, "/api/users", nil, "")
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestRegister_MissingFields(t *testing.T) {
	a := newAPI(t)

	rr := a.do(http.MethodPost, "/api/users", map[string]string{"username": "root"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "username and password are required", decode[errorJSON](t, rr).Error)
}

func TestLogin_FailuresShareOneMessage(t *testing.T) {
	a := newAPI(t)
	a.register("root", "Superuser", "salainen")

	wrongPass := a.do(http.MethodPost, "/api/login", map[string]string{"username": "root", "password": "wrong"}, "")
	noUser := a.do(http.MethodPost, "/api/login", map[string]string{"username": "nobody", "password": "salainen"}, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, noUser.Code)
	assert.Equal(t, wrongPass.Body.String(), noUser.Body.String())
	assert.Equal(t, "invalid username or password", decode[errorJSON](t, wrongPass).Error)
}

func TestLogin_ReturnsProfile(t *testing.T) {
	a := newAPI(t)
	a.register("root", "Superuser", "salainen")

	rr := a.do(http.MethodPost, "/api/login", map[string]string{"username": "root", "password": "salainen"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[map[string]string](t, rr)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "root", body["username"])
	assert.Equal(t, "Superuser", body["name"])
}

func TestListUsers_PopulatesBlogsAndHidesHash(t *testing.T) {
	a := newAPI(t)
	token := a.registeredUser("root")
	a.registeredUser("empty")
	kept := a.createBlog(token, map[string]any{"title": "kept", "url": "u"})
	gone := a.createBlog(token, map[string]any{"title": "gone", "url": "u"})
	require.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/blogs/"+gone.ID, nil, token).Code)

	rr := a.do(http.MethodGet, "/api/users", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "$2")
	assert.NotContains(t, strings.ToLower(rr.Body.String()), "password")

	users := decode[[]userJSON](t, rr)
	require.Len(t, users, 2)
	assert.Equal(t, "root", users[0].Username)
	require.Len(t, users[0].Blogs, 1)
	assert.Equal(t, kept.ID, users[0].Blogs[0].ID)
	assert.NotNil(t, users[1].Blogs)
	assert.Empty(t, users[1].Blogs)
}

// =========================================================================
// MISC
// =========================================================================

func TestUnknownEndpoint(t *testing.T) {
	a := newAPI(t)

	rr := a.do(http.MethodGet, "/api/nothing-here", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"unknown endpoint"}`, rr.Body.String())
}

func TestHealth(t *testing.T) {
	a := newAPI(t)

	rr := a.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNew_RejectsShortSecret(t *testing.T) {
	_, err := server.New(server.Config{DBPath: ":memory:", JWTSecret: "short"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
