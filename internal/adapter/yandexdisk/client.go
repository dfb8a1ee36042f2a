package yandexdisk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
)

const backendName = "yandexdisk"

// TooManyRequestsError represents rate limiting signal from the Disk API.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Client resolves temporary download links for files on Yandex Disk.
type Client interface {
	DownloadLink(ctx context.Context, diskPath string) (string, error)
}

// HTTPClient implements Client via the Disk REST API.
type HTTPClient struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// linkResponse mirrors the JSON payload of the download endpoint.
type linkResponse struct {
	Href      string `json:"href"`
	Method    string `json:"method"`
	Templated bool   `json:"templated"`
}

type apiError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

// NewHTTPClient creates a Disk API client authorised with an OAuth token.
func NewHTTPClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse yandex disk url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("yandex disk url must be absolute")
	}
	if token == "" {
		return nil, fmt.Errorf("yandex disk token must be provided")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: parsed,
		token:   token,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// DownloadLink asks the Disk API for a direct download href of diskPath.
func (c *HTTPClient) DownloadLink(ctx context.Context, diskPath string) (string, error) {
	if !strings.HasPrefix(diskPath, "/") && !strings.Contains(diskPath, ":") {
		diskPath = "/" + diskPath
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/v1/disk/resources/download")
	endpoint.RawQuery = url.Values{"path": []string{diskPath}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "OAuth "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", c.fail(diskPath, "", domainErrors.ErrTimeout)
		}
		return "", c.fail(diskPath, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.fail(diskPath, "", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var data linkResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return "", c.fail(diskPath, string(body), fmt.Errorf("decode response: %w", err))
		}
		if data.Href == "" {
			return "", c.fail(diskPath, string(body), errors.New("empty href"))
		}
		return data.Href, nil
	case http.StatusNotFound:
		return "", c.fail(diskPath, describe(body), domainErrors.ErrNotFound)
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", c.fail(diskPath, describe(body), TooManyRequestsError{RetryAfter: retryAfter})
	default:
		c.logger.Error("yandex disk request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return "", c.fail(diskPath, describe(body), fmt.Errorf("yandex disk error: %s", resp.Status))
	}
}

func (c *HTTPClient) fail(diskPath, diagnostic string, err error) error {
	return &domainErrors.StorageError{
		Backend:    backendName,
		Op:         "link",
		Path:       diskPath,
		Diagnostic: diagnostic,
		Err:        err,
	}
}

func describe(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil {
		switch {
		case e.Description != "":
			return e.Description
		case e.Message != "":
			return e.Message
		case e.Error != "":
			return e.Error
		}
	}
	return string(body)
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
