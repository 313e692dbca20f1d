// Package transport provides the HTTP call conventions shared by clients of
// external collaborators: error classification, JSON decoding, and bearer
// credential forwarding.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 * 1024

var (
	// ErrTransport indicates the collaborator could not be reached or the
	// exchange failed without a structured message.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedResponse indicates a success response whose body could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// ServerError is returned when a collaborator responded but signaled failure.
// Status is the HTTP status code, or zero for non-HTTP exchanges.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Status == 0 {
		return "server error: " + e.Message
	}
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// Do sends req and classifies the outcome. Network failures wrap
// ErrTransport; non-2xx responses are consumed and returned as *ServerError.
// On success the caller owns the response body.
func Do(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, req.Method, req.URL.Redacted(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &ServerError{
			Status:  resp.StatusCode,
			Message: errorMessage(resp),
		}
	}
	return resp, nil
}

// DecodeJSON decodes and closes a success response body.
func DecodeJSON[T any](resp *http.Response) (T, error) {
	defer resp.Body.Close()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return v, nil
}

// Discard drains and closes a response body.
func Discard(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}

// SetBearer attaches a bearer credential when token is non-empty.
func SetBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func errorMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
		return envelope.Error
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return http.StatusText(resp.StatusCode)
}
