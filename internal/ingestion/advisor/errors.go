package advisor

import "fmt"

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "advisor http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("advisor http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("advisor http error: status=%d body=%s", e.StatusCode, e.Body)
}
