package adzuna

import "fmt"

// HTTPError is a non-200 response from the search API. It is retried
// like a transport failure; the status is kept for logs and tests.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("adzuna returned %d: %s", e.StatusCode, e.Body)
}
