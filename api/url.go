package api

import (
	"strings"

	"github.com/goware/urlx"
)

const basePath = "/api/v2.0"

// BaseURL returns the REST API base URL for the appliance at raw. raw may be
// a bare hostname, a URL of the web UI, or a websocket API URL
// (ex: wss://nas.example.com/api/current).
func BaseURL(raw string) (string, error) {
	switch {
	case strings.HasPrefix(raw, "wss://"):
		raw = "https://" + strings.TrimPrefix(raw, "wss://")
	case strings.HasPrefix(raw, "ws://"):
		raw = "http://" + strings.TrimPrefix(raw, "ws://")
	}

	u, err := urlx.Parse(raw)
	if err != nil {
		return "", err
	}

	switch strings.TrimSuffix(u.Path, "/") {
	case "", "/api", "/api/current", "/websocket", "/ui":
		u.Path = basePath
	default:
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
