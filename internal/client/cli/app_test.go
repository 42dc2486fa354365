package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"moviehub/internal/client/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		if req["password"] != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"Login successful","user":{"id":"u1","name":"Ada","email":"ada@x.io","createdAt":"2024-01-01T00:00:00Z"}}`))
	})
	mux.HandleFunc("/api/movies", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("genre") == "27" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Failed to fetch movies"}`))
			return
		}
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":1,"title":"Heat","overview":"","poster_path":"/heat.jpg"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T, apiURL, storagePath, input string) (*App, *bytes.Buffer) {
	t.Helper()
	prev := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = prev })

	cfg := &config.Config{APIURL: apiURL, StoragePath: storagePath, Timeout: 2 * time.Second}
	var out bytes.Buffer
	return NewApp(cfg, strings.NewReader(input), &out, zaptest.NewLogger(t)), &out
}

func TestLoginPersistsAcrossRuns(t *testing.T) {
	srv := fakeServer(t)
	path := filepath.Join(t.TempDir(), "storage.json")

	app, out := newTestApp(t, srv.URL, path, "ada@x.io\nsecret1\n")
	require.NoError(t, app.Run(context.Background(), []string{"login"}))
	assert.Contains(t, out.String(), "Login successful!")
	assert.Contains(t, out.String(), "Welcome, Ada! [Logout]")

	app, out = newTestApp(t, srv.URL, path, "")
	require.NoError(t, app.Run(context.Background(), []string{"whoami"}))
	assert.Equal(t, "Welcome, Ada! [Logout]\n", out.String())

	app, out = newTestApp(t, srv.URL, path, "")
	require.NoError(t, app.Run(context.Background(), []string{"logout"}))
	assert.Equal(t, "[Sign In]\n", out.String())

	app, out = newTestApp(t, srv.URL, path, "")
	require.NoError(t, app.Run(context.Background(), []string{"whoami"}))
	assert.Equal(t, "[Sign In]\n", out.String())
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	srv := fakeServer(t)
	app, out := newTestApp(t, srv.URL, filepath.Join(t.TempDir(), "s.json"), "ada@x.io\nwrong\n")

	require.NoError(t, app.Run(context.Background(), []string{"login"}))
	assert.Contains(t, out.String(), "error: Invalid email or password")
}

func TestBrowseText(t *testing.T) {
	srv := fakeServer(t)
	app, out := newTestApp(t, srv.URL, filepath.Join(t.TempDir(), "s.json"), "")

	require.NoError(t, app.Run(context.Background(), []string{"browse"}))
	text := out.String()
	assert.Contains(t, text, "== AI Movies ==")
	assert.Contains(t, text, "Heat")
	assert.Contains(t, text, `Failed to load movies: HTTP error! status: 500 - {"error":"Failed to fetch movies"}`)
	assert.Equal(t, 4, strings.Count(text, "1. Heat"))
}

func TestBrowseHTML(t *testing.T) {
	srv := fakeServer(t)
	app, out := newTestApp(t, srv.URL, filepath.Join(t.TempDir(), "s.json"), "")

	require.NoError(t, app.Run(context.Background(), []string{"browse", "-html"}))
	assert.Contains(t, out.String(), `<section id="horror-movies"`)
	assert.Contains(t, out.String(), "Sign In")
}

func TestPreview(t *testing.T) {
	srv := fakeServer(t)
	app, out := newTestApp(t, srv.URL, filepath.Join(t.TempDir(), "s.json"), "")

	require.NoError(t, app.Run(context.Background(), []string{"preview", "drama", "1"}))
	assert.Contains(t, out.String(), "Heat")
	assert.Contains(t, out.String(), "No description available")
	assert.Contains(t, out.String(), "BigBuckBunny.mp4")

	assert.Error(t, app.Run(context.Background(), []string{"preview", "western", "1"}))
	assert.Error(t, app.Run(context.Background(), []string{"preview", "drama", "5"}))
}

func TestUnknownCommandIsUsageError(t *testing.T) {
	app, out := newTestApp(t, "http://127.0.0.1:1", filepath.Join(t.TempDir(), "s.json"), "")

	err := app.Run(context.Background(), []string{"dance"})
	assert.True(t, IsUsageError(err))
	assert.Contains(t, out.String(), "usage:")
}
