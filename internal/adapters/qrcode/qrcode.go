// Package qrcode builds image URLs for check-in tokens using an external
// QR rendering service.
package qrcode

import (
	"fmt"
	"net/url"
	"strings"

	"campusevents/internal/domain"
)

const defaultBaseURL = "https://api.qrserver.com/v1/create-qr-code/"

type urlRenderer struct {
	baseURL string
	size    int
}

// NewURLRenderer returns a QRCodeRenderer that points at an external QR image
// service. baseURL may be empty to use the default public endpoint.
func NewURLRenderer(baseURL string, size int) domain.QRCodeRenderer {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if size <= 0 {
		size = 300
	}
	return &urlRenderer{baseURL: baseURL, size: size}
}

func (r *urlRenderer) URL(token string) string {
	q := url.Values{}
	q.Set("size", fmt.Sprintf("%dx%d", r.size, r.size))
	q.Set("data", token)
	return r.baseURL + "?" + q.Encode()
}
