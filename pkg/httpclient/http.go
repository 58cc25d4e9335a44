package httpclient

import (
	"context"
	"net/http"
)

// BaseResponse carries the raw transport outcome alongside the decoded body
// so callers can log upstream payloads on non-OK statuses.
type BaseResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// HTTPClient is the JSON client the exchange repositories talk through. Both
// upstream market-data APIs are read-only, so GET is the whole surface.
type HTTPClient interface {
	Get(ctx context.Context, endpoint string, queryParams map[string]string, headers map[string]string, result interface{}) (*BaseResponse, error)
}
