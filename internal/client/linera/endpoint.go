package linera

import (
	"fmt"
	"net/url"
	"regexp"
)

var chainIDPattern = regexp.MustCompile(`/chains/([^/]+)`)

// ChainIDFromEndpoint pulls the chain ID out of an application endpoint URL
// of the form http://host/chains/<chainId>/applications/<appId>.
func ChainIDFromEndpoint(endpoint string) (string, error) {
	m := chainIDPattern.FindStringSubmatch(endpoint)
	if m == nil {
		return "", fmt.Errorf("no chain id in endpoint %q", endpoint)
	}
	return m[1], nil
}

// WSURLFromEndpoint derives the notification websocket URL served by the
// same node as the application endpoint.
func WSURLFromEndpoint(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("bad endpoint %q: %w", endpoint, err)
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	if u.Host == "" {
		return "", fmt.Errorf("no host in endpoint %q", endpoint)
	}
	return scheme + "://" + u.Host + "/ws", nil
}
