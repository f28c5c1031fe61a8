package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"
)

type Client struct {
	// Name and Version identify the program in the User-Agent header.
	Name    string
	Version string
	// URL is the base of the REST API, ex: https://nas.example.com/api/v2.0
	URL string

	// APIKey is sent as a bearer token. When APIKey is empty, Username and
	// Password are sent with HTTP basic authentication.
	APIKey   string
	Username string
	Password string

	HTTP http.Client

	// ObserveFunc is called after every request completes. It is used to
	// record metrics. The response is nil when the request failed.
	ObserveFunc func(start time.Time, request *http.Request, response *http.Response, err error)
}

func checkError(req *http.Request, path string, status int, body []byte) error {
	if status < 400 {
		return nil
	}

	apiError := Error{Method: req.Method, Path: path, Code: int32(status)}
	if err := json.Unmarshal(body, &apiError); err != nil || apiError.Message == "" {
		apiError.Message = strings.TrimSpace(partialText(body, 200))
	}
	return apiError
}

func (c Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL+path, body)
	if err != nil {
		return nil, err
	}

	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}

	switch {
	case c.APIKey != "":
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	case c.Username != "":
		req.SetBasicAuth(c.Username, c.Password)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("truenas-cert-sync/%v (%v; %v/%v)", c.Version, c.Name, runtime.GOOS, runtime.GOARCH))
	return req, nil
}

// request sends a request to the appliance and decodes the response into Res.
// body is encoded as JSON when it is not nil.
func request[Res any](ctx context.Context, client Client, method, path string, query url.Values, body interface{}) (*Res, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := client.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := client.HTTP.Do(req)
	if client.ObserveFunc != nil {
		client.ObserveFunc(start, req, resp, err)
	}
	if err != nil {
		return nil, &ConnectionError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Method: method, Path: path, Err: fmt.Errorf("reading response: %w", err)}
	}

	if err := checkError(req, path, resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	var res Res
	if len(bytes.TrimSpace(respBody)) == 0 {
		return &res, nil
	}

	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, fmt.Errorf("%s %q: parsing json response: %w. partial text: %q", method, path, err, partialText(respBody, 100))
	}

	return &res, nil
}

func get[Res any](ctx context.Context, client Client, path string, query url.Values) (*Res, error) {
	return request[Res](ctx, client, http.MethodGet, path, query, nil)
}

func post[Req, Res any](ctx context.Context, client Client, path string, req *Req) (*Res, error) {
	return request[Res](ctx, client, http.MethodPost, path, nil, req)
}

func put[Req, Res any](ctx context.Context, client Client, path string, req *Req) (*Res, error) {
	return request[Res](ctx, client, http.MethodPut, path, nil, req)
}

func delete[Res any](ctx context.Context, client Client, path string) (*Res, error) {
	return request[Res](ctx, client, http.MethodDelete, path, nil, nil)
}

func partialText(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}

	return string(body[:limit]) + "..."
}
