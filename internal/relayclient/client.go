// Package relayclient is the HTTP client the command interface uses to reach the relay.
package relayclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBaseURL is where a locally started relay listens.
const DefaultBaseURL = "http://localhost:8000"

// NoAnswer is returned when a successful reply carries no answer field.
const NoAnswer = "No answer received"

// APIError is a structured {"error": ...} reply, at any status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// StatusError is a non-2xx reply without a structured error; Body is the raw response text.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string { return e.Body }

// Client issues one request per call against a relay base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for baseURL. A zero timeout means calls wait until the context ends.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient is New with a caller-supplied HTTP client.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	u := strings.TrimSuffix(baseURL, "/")
	if u == "" {
		u = DefaultBaseURL
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: u, http: hc}
}

// BaseURL reports the relay address requests go to.
func (c *Client) BaseURL() string { return c.baseURL }

type queryReply struct {
	Answer *string `json:"answer"`
	Error  *string `json:"error"`
}

// Ask sends question to GET /query and returns the answer text.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	endpoint := c.baseURL + "/query?" + url.Values{"question": {question}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var reply queryReply
	decodeErr := json.Unmarshal(raw, &reply)
	if decodeErr == nil && reply.Error != nil {
		return "", &APIError{Status: resp.StatusCode, Message: *reply.Error}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decoding response: %w", decodeErr)
	}
	if reply.Answer == nil {
		return NoAnswer, nil
	}
	return *reply.Answer, nil
}

// Upload streams the file at path to POST /upload as multipart field "file".
// Any status other than 200 is returned as a *StatusError.
func (c *Client) Upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", pr)
	if err != nil {
		pr.Close()
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
