// Package remote holds the HTTP clients for the external services the
// gateway consumes: the product catalog API, the auth API and the image
// upload host. The gateway never owns this data; every client call is a
// plain JSON round trip with a configured timeout.
package remote

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/studentalliance/catalog-gateway/internal/apperr"
	"github.com/studentalliance/catalog-gateway/internal/config"
	"github.com/studentalliance/catalog-gateway/pkg/zerror"
)

const remoteRejectedCode = "REMOTE_REJECTED"

func newHTTPClient(cfg config.Remote) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// transportErr wraps a no-response failure: DNS, refused connection,
// timeout. The caller sees the generic check-connection message.
func transportErr(err error) error {
	return apperr.RemoteUnavailableErr.WrapParent(err)
}

// responseErr converts a non-2xx remote response into the gateway error
// taxonomy: 4xx surfaces the server-provided message verbatim, 5xx maps to
// a generic try-again-later fault.
func responseErr(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode >= 500 {
		return apperr.RemoteFaultErr.WrapParent(fmt.Errorf("remote status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if resp.StatusCode == http.StatusNotFound {
		return apperr.ProductNotFoundErr.WrapParent(fmt.Errorf("remote status %d", resp.StatusCode))
	}

	msg := serverMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("request rejected with status %d", resp.StatusCode)
	}

	return zerror.NewBadRequest(remoteRejectedCode, msg)
}

func serverMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}

func decodeJSON(resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
