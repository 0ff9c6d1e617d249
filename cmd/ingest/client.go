package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/2beens/cyclingcoach/internal/activities"
	"github.com/2beens/cyclingcoach/internal/middleware"

	log "github.com/sirupsen/logrus"
)

const createActivityPath = "/api/tools/create_cycling_activity"

type ingestClient struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

func newIngestClient(baseURL, secret string, httpClient *http.Client) *ingestClient {
	return &ingestClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		secret:     secret,
		httpClient: httpClient,
	}
}

// createAll posts every activity in order and stops at the first rejected one.
func (c *ingestClient) createAll(ctx context.Context, requests []activities.CreateActivityRequest) (int, error) {
	created := 0
	for i, req := range requests {
		id, err := c.create(ctx, req)
		if err != nil {
			return created, fmt.Errorf("activity #%d (%s): %w", i+1, req.StartTime, err)
		}
		log.Debugf("created activity [%s] starting at %s", id, req.StartTime)
		created++
	}
	return created, nil
}

func (c *ingestClient) create(ctx context.Context, activity activities.CreateActivityRequest) (string, error) {
	body, err := json.Marshal(activity)
	if err != nil {
		return "", fmt.Errorf("marshal activity: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createActivityPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "CyclingCoach/ingest")
	if c.secret != "" {
		req.Header.Set(middleware.ToolSecretHeader, c.secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post activity: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var created activities.CreateActivityResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return created.ID.String(), nil
}
