package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentalliance/catalog-gateway/internal/remote"
	"github.com/studentalliance/catalog-gateway/pkg/zerror"
)

func TestLogin(t *testing.T) {
	t.Run("Should return the token and the raw user object", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/auth/login", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "admin@example.com", body["email"])

			//nolint:errcheck
			w.Write([]byte(`{"token":"jwt-1","user":{"name":"Admin"}}`))
		}))
		defer srv.Close()

		cli := remote.NewAuthClient(remoteCfg(srv.URL))
		result, err := cli.Login(context.Background(), "admin@example.com", "secret")
		require.NoError(t, err)

		assert.Equal(t, "jwt-1", result.Token)
		assert.JSONEq(t, `{"name":"Admin"}`, string(result.User))
	})

	t.Run("Should surface auth rejections verbatim", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			//nolint:errcheck
			w.Write([]byte(`{"message":"invalid credentials"}`))
		}))
		defer srv.Close()

		cli := remote.NewAuthClient(remoteCfg(srv.URL))
		_, err := cli.Login(context.Background(), "admin@example.com", "wrong")

		var zErr zerror.ZError
		require.ErrorAs(t, err, &zErr)
		assert.Equal(t, "invalid credentials", zErr.Msg())
	})
}

func TestUpdatePassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/update-password", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cli := remote.NewAuthClient(remoteCfg(srv.URL))
	assert.NoError(t, cli.UpdatePassword(context.Background(), "admin@example.com", "newpass"))
}
