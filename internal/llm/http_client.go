package llm

import (
	"net/http"
	"time"
)

// newHTTPClient returns the HTTP client shared by the LLM API clients.
// Local inference can be slow on first token, so the timeout is generous.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Minute,
	}
}
