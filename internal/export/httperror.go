package export

import "fmt"

// HTTPError is a non-2xx response from a destination API. Kept as a typed
// error so the pipeline can classify auth failures by status code.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Body)
}
