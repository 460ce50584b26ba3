package config

import "time"

// Remote holds the base URLs of the external services the gateway talks to.
// The product and auth services are JSON REST APIs; the upload URL accepts
// multipart file posts and returns the hosted file URL.
type Remote struct {
	ProductBaseURL string        `env:"REMOTE_PRODUCT_BASE_URL,required"`
	AuthBaseURL    string        `env:"REMOTE_AUTH_BASE_URL,required"`
	UploadURL      string        `env:"REMOTE_UPLOAD_URL,required"`
	Timeout        time.Duration `env:"REMOTE_TIMEOUT" envDefault:"15s"`
}
