package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/studentalliance/catalog-gateway/internal/config"
)

// UploadClient posts image files to the external object-storage host and
// returns the hosted URL. Cloudinary-style hosts answer with "secure_url";
// the simpler upload endpoint answers with "fileUrl". Both are accepted.
type UploadClient struct {
	uploadURL  string
	httpClient *http.Client
}

func NewUploadClient(cfg config.Remote) *UploadClient {
	return &UploadClient{
		uploadURL:  cfg.UploadURL,
		httpClient: newHTTPClient(cfg),
	}
}

func (c *UploadClient) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy file into form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", responseErr(resp)
	}

	var result struct {
		FileURL   string `json:"fileUrl"`
		SecureURL string `json:"secure_url"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		return "", err
	}

	url := result.FileURL
	if url == "" {
		url = result.SecureURL
	}
	if url == "" {
		return "", fmt.Errorf("upload response carried no file URL")
	}

	return url, nil
}
