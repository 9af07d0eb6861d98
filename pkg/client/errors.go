package client

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fastjson"
)

// FieldError is one entry of the "errors" array in an API fault.
type FieldError struct {
	Resource string
	Field    string
	Code     string
}

func (e FieldError) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Resource, e.Field, e.Code} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// APIError is returned for every non-2xx response.
type APIError struct {
	Status     int
	Message    string
	Errors     []FieldError
	RetryAfter time.Duration
	Raw        []byte
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if len(e.Errors) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, msg)
	}
	details := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		details[i] = fe.String()
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.Status, msg, strings.Join(details, "; "))
}

// Temporary reports whether the request may succeed if repeated later.
func (e *APIError) Temporary() bool {
	if e == nil {
		return false
	}
	return e.Status == http.StatusTooManyRequests || (e.Status >= 500 && e.Status < 600)
}

// Unauthorized reports whether the credentials were rejected.
func (e *APIError) Unauthorized() bool {
	return e != nil && e.Status == http.StatusUnauthorized
}

func (c *Client) parseAPIError(resp *http.Response, data []byte) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Raw: data}
	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.RetryAfter = retryAfter(resp.Header.Get("Retry-After"))
	}

	p := c.parsers.Get()
	defer c.parsers.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil || v.Type() != fastjson.TypeObject {
		// Fallback to plain message.
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}
	apiErr.Message = string(v.GetStringBytes("message"))
	for _, fe := range v.GetArray("errors") {
		apiErr.Errors = append(apiErr.Errors, FieldError{
			Resource: string(fe.GetStringBytes("resource")),
			Field:    string(fe.GetStringBytes("field")),
			Code:     string(fe.GetStringBytes("code")),
		})
	}
	return apiErr
}
