package wordpress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{Endpoint: srv.URL, BlogID: "1", Username: "editor", Password: "secret"}
	return NewClient(cfg, srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_NewPost(t *testing.T) {
	var body string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "text/xml")
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		body = string(raw)

		_, _ = io.WriteString(w, `<?xml version="1.0"?>
<methodResponse><params><param><value><string>4521</string></value></param></params></methodResponse>`)
	})

	postID, err := client.NewPost(context.Background(), Post{
		Title:   "Prince - Kiss",
		Content: "<p>Ann Lee: [9]</p>",
		Excerpt: "Minimal & funky",
	})
	require.NoError(t, err)
	assert.Equal(t, "4521", postID)

	assert.Contains(t, body, "<methodName>metaWeblog.newPost</methodName>")
	for _, want := range []string{
		"<string>editor</string>",
		"<string>secret</string>",
		"<name>title</name>",
		"<string>Prince - Kiss</string>",
		"<name>description</name>",
		"&lt;p&gt;Ann Lee: [9]&lt;/p&gt;",
		"<name>mt_excerpt</name>",
		"Minimal &amp; funky",
		"<name>mt_allow_comments</name>",
		"<string>open</string>",
		"<name>mt_allow_pings</name>",
		"<string>closed</string>",
		"<boolean>1</boolean>",
	} {
		assert.Contains(t, body, want)
	}
}

func TestClient_NewPost_IntID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<methodResponse><params><param><value><int>77</int></value></param></params></methodResponse>`)
	})

	postID, err := client.NewPost(context.Background(), Post{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "77", postID)
}

func TestClient_NewPost_Fault(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<methodResponse><fault><value><struct>
<member><name>faultCode</name><value><int>403</int></value></member>
<member><name>faultString</name><value><string>Incorrect username or password.</string></value></member>
</struct></value></fault></methodResponse>`)
	})

	_, err := client.NewPost(context.Background(), Post{Title: "x"})
	require.Error(t, err)

	var fe FaultError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 403, fe.Code)
	assert.Equal(t, "Incorrect username or password.", fe.String)
}

func TestClient_NewPost_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	_, err := client.NewPost(context.Background(), Post{Title: "x"})
	assert.ErrorContains(t, err, "unexpected status")
}

func TestClient_NewPost_HonoursContext(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.NewPost(ctx, Post{Title: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
