package remote_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentalliance/catalog-gateway/internal/remote"
)

func TestUpload(t *testing.T) {
	t.Run("Should post multipart and return the fileUrl", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()

			assert.Equal(t, "mic.png", header.Filename)
			content, err := io.ReadAll(file)
			require.NoError(t, err)
			assert.Equal(t, "image-bytes", string(content))

			//nolint:errcheck
			w.Write([]byte(`{"fileUrl":"https://cdn.example/mic.png"}`))
		}))
		defer srv.Close()

		cfg := remoteCfg(srv.URL)
		cfg.UploadURL = srv.URL

		cli := remote.NewUploadClient(cfg)
		url, err := cli.Upload(context.Background(), "mic.png", strings.NewReader("image-bytes"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/mic.png", url)
	})

	t.Run("Should accept the secure_url variant", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			//nolint:errcheck
			w.Write([]byte(`{"secure_url":"https://cdn.example/alt.png"}`))
		}))
		defer srv.Close()

		cfg := remoteCfg(srv.URL)
		cfg.UploadURL = srv.URL

		cli := remote.NewUploadClient(cfg)
		url, err := cli.Upload(context.Background(), "a.png", strings.NewReader("x"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/alt.png", url)
	})

	t.Run("Should fail when no URL comes back", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			//nolint:errcheck
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		cfg := remoteCfg(srv.URL)
		cfg.UploadURL = srv.URL

		cli := remote.NewUploadClient(cfg)
		_, err := cli.Upload(context.Background(), "a.png", strings.NewReader("x"))
		assert.Error(t, err)
	})
}
