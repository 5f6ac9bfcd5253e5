package marketdata

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// apiError is a non-2xx provider response with enough classification for the
// retry policy.
type apiError struct {
	Status      int
	URL         string
	Body        string
	RateLimited bool
}

func (e *apiError) Error() string {
	return fmt.Sprintf("http %d %s: %s", e.Status, e.URL, e.Body)
}

func newAPIError(resp *http.Response, body []byte) *apiError {
	msg := strings.TrimSpace(string(body))
	return &apiError{
		Status:      resp.StatusCode,
		URL:         resp.Request.URL.String(),
		Body:        msg,
		RateLimited: resp.StatusCode == http.StatusTooManyRequests || strings.Contains(strings.ToLower(msg), "throttled"),
	}
}

// IsRateLimited reports whether err is a provider rate-limit response.
func IsRateLimited(err error) bool {
	var ae *apiError
	return errors.As(err, &ae) && ae.RateLimited
}
