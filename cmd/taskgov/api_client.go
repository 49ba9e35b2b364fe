package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fentz26/taskgov/internal/controlplane"
)

// DefaultClientTimeout is the default timeout for server requests.
const DefaultClientTimeout = 10 * time.Second

var apiClient = &http.Client{
	Timeout: DefaultClientTimeout,
}

// serverURL turns a listen address into a base URL.
func serverURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimRight(addr, "/")
	}
	return "http://" + addr
}

// apiGet performs a GET request against a running `taskgov serve`.
func apiGet(base, path string) ([]byte, error) {
	resp, err := apiClient.Get(base + path)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// CheckHealth returns the parsed health payload even on non-200 responses
// so callers can show why the server is unhealthy.
func CheckHealth(base string) (*controlplane.HealthResponse, error) {
	resp, err := apiClient.Get(base + "/health")
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var health controlplane.HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, fmt.Errorf("failed to parse health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &health, fmt.Errorf("health check failed (status %d)", resp.StatusCode)
	}
	return &health, nil
}

// fetchSummary reads the live counts and violations.
func fetchSummary(base string) (*controlplane.SummaryResponse, error) {
	body, err := apiGet(base, "/api/summary")
	if err != nil {
		return nil, err
	}
	var sum controlplane.SummaryResponse
	if err := json.Unmarshal(body, &sum); err != nil {
		return nil, fmt.Errorf("failed to parse summary response: %w", err)
	}
	return &sum, nil
}
