// Package wordpress pushes published posts to a WordPress blog over XML-RPC.
package wordpress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kolo/xmlrpc"
)

// maxResponseBytes bounds a method response read into memory.
const maxResponseBytes = 1 << 20

// Config holds the XML-RPC endpoint and credentials.
type Config struct {
	Endpoint string
	BlogID   string
	Username string
	Password string
}

// Post is the content of a new blog post.
type Post struct {
	Title   string
	Content string
	Excerpt string
}

// FaultError is an XML-RPC fault returned by the server.
type FaultError = xmlrpc.FaultError

// postContent is the metaWeblog content struct.
type postContent struct {
	Title         string `xmlrpc:"title"`
	Description   string `xmlrpc:"description"`
	Excerpt       string `xmlrpc:"mt_excerpt"`
	AllowComments string `xmlrpc:"mt_allow_comments"`
	AllowPings    string `xmlrpc:"mt_allow_pings"`
	PostType      string `xmlrpc:"post_type"`
}

// Client calls metaWeblog methods on a WordPress xmlrpc.php endpoint.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	cfg        Config
}

// NewClient creates a client. A nil httpClient gets a 30 second timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, httpClient: httpClient, logger: logger}
}

// NewPost publishes p and returns the WordPress post id.
// Comments are open, pings are closed.
func (c *Client) NewPost(ctx context.Context, p Post) (string, error) {
	content := postContent{
		Title:         p.Title,
		Description:   p.Content,
		Excerpt:       p.Excerpt,
		AllowComments: "open",
		AllowPings:    "closed",
		PostType:      "post",
	}

	// WordPress answers with a string id; some installs send an int.
	var reply any
	err := c.call(ctx, "metaWeblog.newPost",
		[]any{c.cfg.BlogID, c.cfg.Username, c.cfg.Password, content, true},
		&reply)
	if err != nil {
		return "", err
	}

	var postID string
	switch v := reply.(type) {
	case string:
		postID = v
	case int64:
		postID = fmt.Sprint(v)
	}
	if postID == "" {
		return "", errors.New("metaWeblog.newPost: empty post id")
	}

	c.logger.Info("post pushed to wordpress", "title", p.Title, "wordpress_post_id", postID)
	return postID, nil
}

// call runs one method. The request is bound to ctx; faults come back as
// FaultError.
func (c *Client) call(ctx context.Context, method string, args []any, reply any) error {
	req, err := xmlrpc.NewRequest(c.cfg.Endpoint, method, args)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %s", method, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	result := xmlrpc.Response(body)
	if err := result.Err(); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if err := result.Unmarshal(reply); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}
