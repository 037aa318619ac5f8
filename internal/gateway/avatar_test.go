package gateway

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestAvatarClient_URL(t *testing.T) {
	c := NewAvatarClient("", 64, log.New(io.Discard, "", 0))
	assert.Equal(t, "https://github.com/alice.png?size=64", c.URL("alice"))

	c = NewAvatarClient("http://example.test/", 0, log.New(io.Discard, "", 0))
	assert.Equal(t, "http://example.test/alice.png", c.URL("alice"))
}

func TestAvatarClient_Fetch(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expected       *Avatar
		expectedErrMsg string
	}{
		{
			name: "happy path - content type from header",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/alice.png", r.URL.Path)
				assert.Empty(t, r.Header.Get("Authorization"))
				w.Header().Set("Content-Type", "image/jpeg; charset=binary")
				w.Write([]byte("jpegdata"))
			},
			expected: &Avatar{ContentType: "image/jpeg", Data: []byte("jpegdata")},
		},
		{
			name: "content type sniffed when missing",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/octet-stream")
				w.Write(pngHeader)
			},
			expected: &Avatar{ContentType: "image/png", Data: pngHeader},
		},
		{
			name: "not found",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			expectedErrMsg: "unexpected status",
		},
		{
			name: "not an image",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Write([]byte("<html></html>"))
			},
			expectedErrMsg: "is not an image",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tc.handlerFunc))
			defer server.Close()

			c := NewAvatarClient(server.URL, 0, log.New(io.Discard, "", 0))
			avatar, err := c.Fetch(context.Background(), "alice")
			if tc.expectedErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, avatar)
		})
	}
}
