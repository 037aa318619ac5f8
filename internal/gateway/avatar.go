package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultAvatarBaseURL serves profile images as /<login>.png.
	DefaultAvatarBaseURL = "https://github.com"

	avatarTimeout  = 15 * time.Second
	maxAvatarBytes = 1 << 20
)

// Avatar is a downloaded profile image.
type Avatar struct {
	ContentType string
	Data        []byte
}

// AvatarClient downloads profile images. It deliberately does not reuse the
// authenticated API client: avatars are served from other hosts and must not
// receive the access token.
type AvatarClient struct {
	httpClient *http.Client
	baseURL    string
	size       int
	logger     *log.Logger
}

// NewAvatarClient creates an AvatarClient. An empty baseURL selects DefaultAvatarBaseURL.
func NewAvatarClient(baseURL string, size int, logger *log.Logger) *AvatarClient {
	if baseURL == "" {
		baseURL = DefaultAvatarBaseURL
	}
	return &AvatarClient{
		httpClient: &http.Client{Timeout: avatarTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		size:       size,
		logger:     logger,
	}
}

// URL returns the remote address of the avatar for login.
func (c *AvatarClient) URL(login string) string {
	u := fmt.Sprintf("%s/%s.png", c.baseURL, url.PathEscape(login))
	if c.size > 0 {
		u += fmt.Sprintf("?size=%d", c.size)
	}
	return u
}

// Fetch downloads the avatar for login.
func (c *AvatarClient) Fetch(ctx context.Context, login string) (*Avatar, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(login), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build avatar request for %s: %w", login, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch avatar for %s: %w", login, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch avatar for %s: unexpected status %s", login, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar for %s: %w", login, err)
	}
	if len(data) > maxAvatarBytes {
		return nil, fmt.Errorf("avatar for %s exceeds %d bytes", login, maxAvatarBytes)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("avatar for %s is not an image (%s)", login, contentType)
	}
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	c.logger.Printf("  Fetched avatar for %s (%d bytes).", login, len(data))
	return &Avatar{ContentType: contentType, Data: data}, nil
}
