package httpx

import "net/http"

// Client abstracts the HTTP transport so moderation clients can be tested
// against stubs and wrapped with resilience policies.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}
