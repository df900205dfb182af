// Package linera talks to a chain application's GraphQL endpoint: queries
// and mutations over HTTP POST, notifications over a graphql-transport-ws
// subscription.
package linera

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type Client struct {
	HTTP   *http.Client
	Logger *zap.Logger
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// Execute posts one GraphQL document and returns the data payload.
// Transport failures and non-2xx statuses surface as errors; a GraphQL-level
// errors array in a 2xx response is only logged and the (possibly partial)
// data is still returned, so callers keep whatever fields did resolve.
// There is no retry here: polling and backoff belong to the callers.
func (c *Client) Execute(ctx context.Context, endpoint, query string) (json.RawMessage, error) {
	body, err := json.Marshal(graphQLRequest{Query: query})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(raw)}
	}

	var parsed graphQLResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	if len(parsed.Errors) > 0 && c.Logger != nil {
		msgs := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			msgs = append(msgs, e.Message)
		}
		c.Logger.Warn("graphql errors",
			zap.String("endpoint", endpoint),
			zap.String("query", compact(query)),
			zap.Strings("errors", msgs),
		)
	}
	return parsed.Data, nil
}

// Query is the degrading variant used by the sync pipeline: any failure is
// logged and an empty payload comes back, so a bad cycle yields "no data"
// instead of an aborted daemon.
func (c *Client) Query(ctx context.Context, endpoint, query string) json.RawMessage {
	data, err := c.Execute(ctx, endpoint, query)
	if err != nil {
		if c.Logger != nil {
			c.Logger.Error("graphql query failed",
				zap.String("endpoint", endpoint),
				zap.String("query", compact(query)),
				zap.Error(err),
			)
		}
		return nil
	}
	return data
}

func compact(q string) string {
	return strings.Join(strings.Fields(q), " ")
}
